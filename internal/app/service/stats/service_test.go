package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlatformStatistic_EmptyRequest(t *testing.T) {
	svc := New(nil)
	res, err := svc.GetPlatformStatistic(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Empty(t, res.DataItems)
}

func TestGetPlatformStatistic_UnknownDataItemFailsWholeRequest(t *testing.T) {
	// invalid ids error out before any query, so a nil db is safe here
	svc := New(nil)
	_, err := svc.GetPlatformStatistic(context.Background(), &Request{
		DataItems: []*DataItem{{ID: "nope"}, {ID: "also_nope"}, {ID: "still_nope"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data item id")
}
