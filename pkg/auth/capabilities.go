package auth

import (
	"sort"

	"github.com/angelmondragon/wholesale-backoffice/pkg/enums"
)

// Capabilities is the permission set resolved once per request.
type Capabilities map[enums.Permission]struct{}

// NewCapabilities builds a set from perms, dropping unknown values.
func NewCapabilities(perms ...enums.Permission) Capabilities {
	caps := make(Capabilities, len(perms))
	for _, p := range perms {
		if p.IsValid() {
			caps[p] = struct{}{}
		}
	}
	return caps
}

// Has reports whether the set grants perm.
func (c Capabilities) Has(perm enums.Permission) bool {
	_, ok := c[perm]
	return ok
}

// HasAll reports whether every permission in perms is granted.
func (c Capabilities) HasAll(perms ...enums.Permission) bool {
	for _, p := range perms {
		if !c.Has(p) {
			return false
		}
	}
	return true
}

// List returns the granted permissions sorted for stable output.
func (c Capabilities) List() []enums.Permission {
	out := make([]enums.Permission, 0, len(c))
	for p := range c {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
