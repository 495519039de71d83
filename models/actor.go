package models

// Actor roles.
const (
	RoleUser    = "user"
	RoleStylist = "stylist"
)

// Actor identifies who is performing a booking operation. Passing it
// explicitly keeps user-vs-stylist checks in one place instead of scattering
// id comparisons across handlers.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
