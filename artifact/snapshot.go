package artifact

import "strings"

// A Slot describes a filled slot.
type Slot struct {
	// Name is the display name of the artifact.
	Name string
	// Size is the artifact length in bytes.
	Size int
	// Value is the field value for text roles, empty for files.
	Value string
}

// A Snapshot maps every filled role to its slot. Roles missing from the
// map are empty.
type Snapshot map[Role]Slot

// Has reports whether r is filled.
func (s Snapshot) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// HasAll reports whether every role in rs is filled.
func (s Snapshot) HasAll(rs ...Role) bool {
	for _, r := range rs {
		if !s.Has(r) {
			return false
		}
	}
	return true
}

// Value returns the trimmed field value of r.
func (s Snapshot) Value(r Role) string {
	return strings.TrimSpace(s[r].Value)
}

// Name returns the display name of the artifact bound to r.
func (s Snapshot) Name(r Role) string {
	return s[r].Name
}
