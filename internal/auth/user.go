package auth

import "github.com/frahmantamala/expense-portal/internal/core/datamodel/user"

// Viewer is the authenticated person looking at a screen.
type Viewer struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Role user.Role `json:"role"`
}

// CanApprove is safe on a nil viewer, which never can.
func (v *Viewer) CanApprove() bool {
	return v != nil && v.Role.CanApprove()
}

func (v *Viewer) HasRole(roles ...user.Role) bool {
	if v == nil {
		return false
	}
	for _, r := range roles {
		if v.Role == r {
			return true
		}
	}
	return false
}
