// Package auth provides the acting-user model and JWT token handling.
// Identity issuing lives outside this service; tokens are only verified
// and mapped to an Actor here.
package auth

// Role names recognized by the lifecycle guards.
const (
	RoleAdmin       = "admin"
	RoleReviewer    = "reviewer"
	RoleContributor = "contributor"
)

// Actor is the acting user as extracted from a verified token.
type Actor struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the actor carries the given role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// CanReview reports whether the actor may act as a reviewer.
func (a Actor) CanReview() bool {
	return a.IsAdmin() || a.HasRole(RoleReviewer)
}
