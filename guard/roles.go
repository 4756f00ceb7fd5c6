package guard

// Role names what kind of account a user holds on the platform.
type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// ValidRoles lists every role the platform issues, in display order.
var ValidRoles = []Role{RoleJobSeeker, RoleEmployer, RoleAdmin}

// KnownRole reports whether r is one of the platform's roles.
func KnownRole(r Role) bool {
	switch r {
	case RoleJobSeeker, RoleEmployer, RoleAdmin:
		return true
	default:
		return false
	}
}

func roleBit(r Role) uint8 {
	switch r {
	case RoleJobSeeker:
		return 1 << 0
	case RoleEmployer:
		return 1 << 1
	case RoleAdmin:
		return 1 << 2
	default:
		return 0
	}
}

// RoleSet is a bitmask over the known roles. The zero value is the empty set,
// which the guard treats as "any signed-in user".
type RoleSet uint8

// Roles builds a RoleSet from the given roles. Unknown roles are ignored.
func Roles(rs ...Role) RoleSet {
	var s RoleSet
	for _, r := range rs {
		s |= RoleSet(roleBit(r))
	}
	return s
}

// Has reports whether r is in the set. Unknown roles are never members.
func (s RoleSet) Has(r Role) bool {
	bit := roleBit(r)
	if bit == 0 {
		return false
	}
	return uint8(s)&bit != 0
}

// Empty reports whether the set names no roles.
func (s RoleSet) Empty() bool {
	return s == 0
}

// List returns the set's members in ValidRoles order.
func (s RoleSet) List() []Role {
	var out []Role
	for _, r := range ValidRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}
