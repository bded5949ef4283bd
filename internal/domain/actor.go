package domain

type Role string

const (
	RoleBusiness Role = "business"
	RoleTalent   Role = "talent"
	RoleAdmin    Role = "admin"
)

// Actor is an already-authenticated caller identity. The engine checks
// authorization against it but never authenticates.
type Actor struct {
	ID   string
	Role Role
}
