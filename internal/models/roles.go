package models

// Role is the canonical access level of an Account.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a role name onto a Role. Unrecognized names map to RoleUser;
// ok reports whether the name was one of the known roles.
func ParseRole(name string) (role Role, ok bool) {
	switch Role(name) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleModerator:
		return RoleModerator, true
	case RoleUser:
		return RoleUser, true
	default:
		return RoleUser, false
	}
}

// Flags returns the storage flags encoding r.
func (r Role) Flags() (superuser, staff bool) {
	switch r {
	case RoleAdmin:
		return true, true
	case RoleModerator:
		return false, true
	default:
		return false, false
	}
}

// RoleFromFlags decodes stored flags. Superuser wins over staff.
func RoleFromFlags(superuser, staff bool) Role {
	switch {
	case superuser:
		return RoleAdmin
	case staff:
		return RoleModerator
	default:
		return RoleUser
	}
}

func (r Role) String() string {
	return string(r)
}
