package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trademint/backend/pkg/types"
)

func tiersJSON(t *testing.T, m types.TierMap) []byte {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func TestReconcile_AllCases(t *testing.T) {
	log := zap.NewNop().Sugar()

	tests := []struct {
		name string
		rows []ServiceRow
		want []*Offering
	}{
		{name: "empty input", rows: nil, want: []*Offering{}},
		{
			name: "single row no tiers",
			rows: []ServiceRow{{ID: "s1", Name: "Equity Intraday", Description: "d", SubscriberCount: 3}},
			want: []*Offering{{ServiceID: "s1", Name: "Equity Intraday", Description: "d", SubscriberCount: 3, Tiers: types.TierMap{}}},
		},
		{
			name: "later row wins tier collision",
			rows: []ServiceRow{
				{ID: "s1", Name: "Plan A", PricingTiers: tiersJSON(t, types.TierMap{types.TierMonthly: {Price: 100, Days: 30}})},
				{ID: "s2", Name: "Plan A", PricingTiers: tiersJSON(t, types.TierMap{
					types.TierMonthly: {Price: 120, Days: 30},
					types.TierYearly:  {Price: 1000, Days: 365},
				})},
			},
			want: []*Offering{{ServiceID: "s1", Name: "Plan A", Tiers: types.TierMap{
				types.TierMonthly: {Price: 120, Days: 30},
				types.TierYearly:  {Price: 1000, Days: 365},
			}}},
		},
		{
			name: "exact name equality, no normalization",
			rows: []ServiceRow{
				{ID: "s1", Name: "Equity Intraday"},
				{ID: "s2", Name: "equity intraday "},
			},
			want: []*Offering{
				{ServiceID: "s1", Name: "Equity Intraday", Tiers: types.TierMap{}},
				{ServiceID: "s2", Name: "equity intraday ", Tiers: types.TierMap{}},
			},
		},
		{
			name: "malformed tiers row contributes nothing but does not abort",
			rows: []ServiceRow{
				{ID: "s1", Name: "Plan A", PricingTiers: []byte(`{not json`)},
				{ID: "s2", Name: "Plan A", PricingTiers: tiersJSON(t, types.TierMap{types.TierWeekly: {Price: 50, Days: 7}})},
			},
			want: []*Offering{{ServiceID: "s1", Name: "Plan A", Tiers: types.TierMap{
				types.TierWeekly: {Price: 50, Days: 7},
			}}},
		},
		{
			name: "representative fields come from first row",
			rows: []ServiceRow{
				{ID: "s1", Name: "Plan B", Description: "first", SubscriberCount: 5},
				{ID: "s2", Name: "Plan B", Description: "second", SubscriberCount: 9},
			},
			want: []*Offering{{ServiceID: "s1", Name: "Plan B", Description: "first", SubscriberCount: 5, Tiers: types.TierMap{}}},
		},
		{
			name: "days from data are authoritative, not recomputed",
			rows: []ServiceRow{
				{ID: "s1", Name: "Plan C", PricingTiers: tiersJSON(t, types.TierMap{types.TierWeekly: {Price: 10, Days: 9}})},
			},
			want: []*Offering{{ServiceID: "s1", Name: "Plan C", Tiers: types.TierMap{
				types.TierWeekly: {Price: 10, Days: 9},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(log, tt.rows)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].ServiceID, got[i].ServiceID)
				assert.Equal(t, tt.want[i].Name, got[i].Name)
				assert.Equal(t, tt.want[i].Description, got[i].Description)
				assert.Equal(t, tt.want[i].SubscriberCount, got[i].SubscriberCount)
				assert.Equal(t, tt.want[i].Tiers, got[i].Tiers)
			}
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	log := zap.NewNop().Sugar()
	rows := []ServiceRow{
		{ID: "s1", Name: "Plan A", PricingTiers: tiersJSON(t, types.TierMap{types.TierMonthly: {Price: 100, Days: 30}})},
		{ID: "s2", Name: "Plan A", PricingTiers: tiersJSON(t, types.TierMap{types.TierMonthly: {Price: 120, Days: 30}, types.TierYearly: {Price: 1000, Days: 365}})},
		{ID: "s3", Name: "Plan B", PricingTiers: tiersJSON(t, types.TierMap{types.TierWeekly: {Price: 40, Days: 7}})},
	}

	once := Reconcile(log, rows)

	// feed the merge its own output
	again := Reconcile(log, offeringsToRows(t, once))
	require.Equal(t, once, again)
}

func TestReconcile_PureNoInputMutation(t *testing.T) {
	log := zap.NewNop().Sugar()
	blob := tiersJSON(t, types.TierMap{types.TierMonthly: {Price: 100, Days: 30}})
	rows := []ServiceRow{
		{ID: "s1", Name: "Plan A", PricingTiers: blob},
		{ID: "s2", Name: "Plan A", PricingTiers: tiersJSON(t, types.TierMap{types.TierMonthly: {Price: 120, Days: 30}})},
	}

	first := Reconcile(log, rows)
	second := Reconcile(log, rows)
	assert.Equal(t, first, second)
	assert.JSONEq(t, `{"monthly":{"price":100,"days":30}}`, string(rows[0].PricingTiers))
}

func offeringsToRows(t *testing.T, offerings []*Offering) []ServiceRow {
	t.Helper()
	rows := make([]ServiceRow, 0, len(offerings))
	for _, o := range offerings {
		rows = append(rows, ServiceRow{
			ID:              o.ServiceID,
			Name:            o.Name,
			Description:     o.Description,
			SubscriberCount: o.SubscriberCount,
			PricingTiers:    tiersJSON(t, o.Tiers),
		})
	}
	return rows
}
