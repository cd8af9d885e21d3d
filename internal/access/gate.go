package access

import (
	"fmt"

	"github.com/noah-isme/sma-agenda-api/internal/models"
	appErrors "github.com/noah-isme/sma-agenda-api/pkg/errors"
)

// Operation names a gated core action.
type Operation string

const (
	OpActivityCreate     Operation = "activity:create"
	OpActivityUpdate     Operation = "activity:update"
	OpActivityDelete     Operation = "activity:delete"
	OpActivityRead       Operation = "activity:read"
	OpAnnouncementCreate Operation = "announcement:create"
	OpAnnouncementDelete Operation = "announcement:delete"
	OpAnnouncementRead   Operation = "announcement:read"
	OpReportGenerate     Operation = "report:generate"
)

// Gate maps roles to the operations they may invoke. It is consulted before
// any store mutation and never partially applies anything itself.
type Gate struct {
	matrix map[models.UserRole]map[Operation]struct{}
}

// NewGate builds the role/operation matrix: admins may mutate activities and
// announcements, both roles may read them and generate reports.
func NewGate() *Gate {
	adminOps := []Operation{
		OpActivityCreate, OpActivityUpdate, OpActivityDelete, OpActivityRead,
		OpAnnouncementCreate, OpAnnouncementDelete, OpAnnouncementRead,
		OpReportGenerate,
	}
	userOps := []Operation{
		OpActivityRead, OpAnnouncementRead, OpReportGenerate,
	}

	matrix := map[models.UserRole]map[Operation]struct{}{
		models.RoleAdmin: opSet(adminOps),
		models.RoleUser:  opSet(userOps),
	}
	return &Gate{matrix: matrix}
}

// Authorize returns nil when the role may invoke the operation and a
// FORBIDDEN error otherwise. Unknown roles are always denied.
func (g *Gate) Authorize(role models.UserRole, op Operation) error {
	ops, ok := g.matrix[role]
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %q is not permitted to %s", role, op))
	}
	if _, ok := ops[op]; !ok {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %q is not permitted to %s", role, op))
	}
	return nil
}

func opSet(ops []Operation) map[Operation]struct{} {
	set := make(map[Operation]struct{}, len(ops))
	for _, op := range ops {
		set[op] = struct{}{}
	}
	return set
}
