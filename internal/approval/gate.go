package approval

import (
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
)

// CanTakeAction decides whether approve/reject controls exist at all: a viewer
// holding an approver role looking at a pending expense. Evaluate it on every
// render; status changes after an action.
func CanTakeAction(viewer *auth.Viewer, status expense.Status) bool {
	return viewer.CanApprove() && status == expense.StatusPending
}
