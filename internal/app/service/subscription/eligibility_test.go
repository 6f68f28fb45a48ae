package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/types"
)

func TestCheckEligibility_AllCases(t *testing.T) {
	now := time.Now()
	future := now.Add(10 * 24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name      string
		subs      []*models.Subscription
		serviceID string
		wantBlock bool
		wantSubID string
	}{
		{name: "empty list proceeds", subs: nil, serviceID: "svc-5", wantBlock: false},
		{
			name: "active match blocks",
			subs: []*models.Subscription{
				{ID: "sub-1", ServiceID: "svc-5", Status: types.SubscriptionStatusActive, EndDate: future},
			},
			serviceID: "svc-5",
			wantBlock: true,
			wantSubID: "sub-1",
		},
		{
			name: "expired match proceeds",
			subs: []*models.Subscription{
				{ID: "sub-1", ServiceID: "svc-5", Status: types.SubscriptionStatusExpired, EndDate: past},
			},
			serviceID: "svc-5",
			wantBlock: false,
		},
		{
			name: "cancelled match proceeds",
			subs: []*models.Subscription{
				{ID: "sub-1", ServiceID: "svc-5", Status: types.SubscriptionStatusCancelled, EndDate: future},
			},
			serviceID: "svc-5",
			wantBlock: false,
		},
		{
			name: "active on other service proceeds",
			subs: []*models.Subscription{
				{ID: "sub-1", ServiceID: "svc-9", Status: types.SubscriptionStatusActive, EndDate: future},
			},
			serviceID: "svc-5",
			wantBlock: false,
		},
		{
			name: "stored ACTIVE past end date reads as expired and proceeds",
			subs: []*models.Subscription{
				{ID: "sub-1", ServiceID: "svc-5", Status: types.SubscriptionStatusActive, EndDate: past},
			},
			serviceID: "svc-5",
			wantBlock: false,
		},
		{
			name: "first match wins in server order",
			subs: []*models.Subscription{
				{ID: "sub-1", ServiceID: "svc-5", Status: types.SubscriptionStatusActive, EndDate: future},
				{ID: "sub-2", ServiceID: "svc-5", Status: types.SubscriptionStatusActive, EndDate: future.Add(24 * time.Hour)},
			},
			serviceID: "svc-5",
			wantBlock: true,
			wantSubID: "sub-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict := CheckEligibility(tt.subs, tt.serviceID, now)
			if !tt.wantBlock {
				assert.Nil(t, conflict)
				return
			}
			require.NotNil(t, conflict)
			assert.Equal(t, tt.wantSubID, conflict.SubscriptionID)
			assert.Equal(t, tt.serviceID, conflict.ServiceID)
		})
	}
}

func TestCheckEligibility_Idempotent(t *testing.T) {
	now := time.Now()
	subs := []*models.Subscription{
		{ID: "sub-1", ServiceID: "svc-5", Status: types.SubscriptionStatusActive, EndDate: now.Add(48 * time.Hour)},
	}

	first := CheckEligibility(subs, "svc-5", now)
	second := CheckEligibility(subs, "svc-5", now)
	require.Equal(t, first, second)
}

func TestConflict_FormattedEndDate(t *testing.T) {
	c := &Conflict{EndDate: time.Date(2026, time.March, 9, 15, 4, 5, 0, time.UTC)}
	assert.Equal(t, "09/03/2026", c.FormattedEndDate())
}
