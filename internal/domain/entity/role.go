package entity

// Role is the permission level of a User
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleFrontDesk Role = "front_desk"
)

// DefaultRole is assigned to self-registered accounts
const DefaultRole = RoleFrontDesk

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleFrontDesk
}
