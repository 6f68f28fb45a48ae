package trader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/trademint/backend/internal/models"
	"github.com/trademint/backend/pkg/types"
)

func TestValidationError_JoinsReasons(t *testing.T) {
	err := &ValidationError{Reasons: []string{
		"SEBI registration number already exists",
		"PAN card number already exists",
	}}
	assert.Equal(t, "SEBI registration number already exists, PAN card number already exists", err.Error())
}

func TestValidate_RejectsBadPanBeforeAnyLookup(t *testing.T) {
	// nil db: the format rejection must short-circuit before any query
	svc := NewService(nil, zap.NewNop().Sugar())
	err := svc.Validate(context.Background(), "INH000001234", "BADPAN")
	assert.ErrorIs(t, err, ErrInvalidPan)
}

func TestOnboard_RequiresTraderRole(t *testing.T) {
	svc := NewService(nil, zap.NewNop().Sugar())
	for _, role := range []types.Role{types.RoleClient, types.RoleAdmin} {
		_, err := svc.Onboard(context.Background(), &models.User{ID: "u1", Role: role}, &OnboardRequest{
			Name: "A", SebiReg: "INH000001234", PanCard: "ABCDE1234F",
		})
		assert.Error(t, err, "role %s", role)
	}
}
