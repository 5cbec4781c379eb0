package team

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/bits"
	"strings"
)

type Role uint8

// Canonical roles in position order. The order is used for deterministic
// iteration and tie-breaking.
const (
	Carry Role = iota
	Mid
	Offlane
	Support
	HardSupport
)

var AllRoles = [...]Role{Carry, Mid, Offlane, Support, HardSupport}

var roleNames = [...]string{
	Carry:       "Carry",
	Mid:         "Mid",
	Offlane:     "Offlane",
	Support:     "Support",
	HardSupport: "Hard Support",
}

// Older registration forms used different labels for the same positions.
var roleAliases = map[string]Role{
	"carry":        Carry,
	"mid":          Mid,
	"midlane":      Mid,
	"offlane":      Offlane,
	"support":      Support,
	"soft support": Support,
	"hard support": HardSupport,
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", r)
}

func ParseRole(s string) (Role, error) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleSet is a bitmask of roles.
type RoleSet uint8

const AllRoleSet RoleSet = 1<<len(AllRoles) - 1

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

// ParseRoleSet parses role labels, ignoring duplicates.
func ParseRoleSet(names []string) (RoleSet, error) {
	var s RoleSet
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return 0, err
		}
		s = s.Add(r)
	}
	return s, nil
}

func (s RoleSet) Has(r Role) bool { return s&(1<<r) != 0 }

func (s RoleSet) Add(r Role) RoleSet { return s | 1<<r }

func (s RoleSet) Remove(r Role) RoleSet { return s &^ (1 << r) }

func (s RoleSet) Intersect(o RoleSet) RoleSet { return s & o }

func (s RoleSet) Len() int { return bits.OnesCount8(uint8(s & AllRoleSet)) }

// Roles lists the members in canonical order.
func (s RoleSet) Roles() []Role {
	roles := make([]Role, 0, s.Len())
	for _, r := range AllRoles {
		if s.Has(r) {
			roles = append(roles, r)
		}
	}
	return roles
}

func (s RoleSet) Strings() []string {
	names := make([]string, 0, s.Len())
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return names
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	parsed, err := ParseRoleSet(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the set as a JSON array of labels.
func (s RoleSet) Value() (driver.Value, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *RoleSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = 0
		return nil
	case string:
		return s.UnmarshalJSON([]byte(v))
	case []byte:
		return s.UnmarshalJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into RoleSet", src)
	}
}
