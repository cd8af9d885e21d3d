package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-agenda-api/internal/models"
	appErrors "github.com/noah-isme/sma-agenda-api/pkg/errors"
)

func TestGateAdminAllowedEverything(t *testing.T) {
	gate := NewGate()
	operations := []Operation{
		OpActivityRead, OpActivityCreate, OpActivityUpdate, OpActivityDelete,
		OpAnnouncementRead, OpAnnouncementCreate, OpAnnouncementDelete,
		OpReportGenerate,
	}

	for _, op := range operations {
		assert.NoError(t, gate.Authorize(models.RoleAdmin, op), "admin must be allowed %s", op)
	}
}

func TestGateUserMatrix(t *testing.T) {
	gate := NewGate()

	allowed := []Operation{OpActivityRead, OpAnnouncementRead, OpReportGenerate}
	for _, op := range allowed {
		assert.NoError(t, gate.Authorize(models.RoleUser, op), "user must be allowed %s", op)
	}

	denied := []Operation{
		OpActivityCreate, OpActivityUpdate, OpActivityDelete,
		OpAnnouncementCreate, OpAnnouncementDelete,
	}
	for _, op := range denied {
		err := gate.Authorize(models.RoleUser, op)
		require.Error(t, err, "user must be denied %s", op)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	}
}

func TestGateUnknownRoleDenied(t *testing.T) {
	gate := NewGate()

	err := gate.Authorize(models.UserRole("GUEST"), OpActivityRead)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
