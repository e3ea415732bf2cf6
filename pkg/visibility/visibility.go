// Package visibility builds the data-access predicates that scope reads and
// gate writes per caller. Every entity service funnels through the same three
// entry points: ReadScope for list/get queries, CanMutate for create/update
// ownership, and CanSetStatus for the publish transition.
package visibility

import (
	"github.com/quanghuy1242/content-api/pkg/apperr"
	"github.com/quanghuy1242/content-api/pkg/auth"
)

// Status is an entity lifecycle status. Only one edge is permission-gated:
// setting ACTIVE requires the publish permission.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusPending  Status = "PENDING"
	StatusInactive Status = "INACTIVE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusInactive:
		return true
	}
	return false
}

// Rules parameterize an entity's visibility semantics: which columns carry
// status and ownership, whether admins bypass scoping, and whether non-owners
// get a public ACTIVE tier.
type Rules struct {
	// StatusColumn is the status column name, empty if the entity has none.
	StatusColumn string

	// OwnerColumn is the owning-user column name, empty for unowned entities.
	OwnerColumn string

	// AdminBypass lets admins and machine clients see and mutate every row.
	AdminBypass bool

	// PublicFallback grants non-owners visibility of ACTIVE rows. Without it
	// the entity is strictly private to its owner.
	PublicFallback bool
}

// Per-entity rule sets. Images are deliberately owner-only with no admin
// bypass: uploads are private to the uploading subject.
var (
	CategoryRules = Rules{StatusColumn: "status", AdminBypass: true, PublicFallback: true}
	ContentRules  = Rules{StatusColumn: "status", OwnerColumn: "user_id", AdminBypass: true, PublicFallback: true}
	ImageRules    = Rules{StatusColumn: "status", OwnerColumn: "user_id"}
)

// Scope is a SQL predicate fragment with "?" placeholders. An empty Where
// means the caller sees everything.
type Scope struct {
	Where string
	Args  []interface{}
}

// Restricted reports whether the scope constrains the query at all.
func (s Scope) Restricted() bool {
	return s.Where != ""
}

// ReadScope builds the predicate restricting what the caller may read.
//
// Admins (where the rules allow bypass) read unscoped. Owners read all their
// own rows. With a public fallback, everyone else reads ACTIVE rows; without
// one, anonymous callers are rejected outright and authenticated callers are
// pinned to their own rows.
func ReadScope(p auth.Policy, c *auth.Claims, r Rules) (Scope, error) {
	if r.AdminBypass && p.IsAdmin(c) {
		return Scope{}, nil
	}

	if !r.PublicFallback {
		// Strictly private tier: no anonymous access at all.
		if c.Anonymous() {
			return Scope{}, apperr.Unauthorized("authentication required")
		}
		return Scope{
			Where: r.OwnerColumn + " = ?",
			Args:  []interface{}{c.Subject},
		}, nil
	}

	if r.OwnerColumn == "" || c.Anonymous() {
		return Scope{
			Where: r.StatusColumn + " = ?",
			Args:  []interface{}{string(StatusActive)},
		}, nil
	}

	return Scope{
		Where: "(" + r.OwnerColumn + " = ? OR " + r.StatusColumn + " = ?)",
		Args:  []interface{}{c.Subject, string(StatusActive)},
	}, nil
}

// CanMutate gates creates and updates on the target owner. For creates the
// target owner is the payload's owner field; for updates it is the stored
// owner merged with any requested change.
func CanMutate(p auth.Policy, c *auth.Claims, r Rules, targetOwner string) error {
	if c.Anonymous() {
		return apperr.Unauthorized("authentication required")
	}
	if r.AdminBypass && p.IsAdmin(c) {
		return nil
	}
	if !p.Owns(c, targetOwner) {
		return apperr.Forbidden("record owner mismatch")
	}
	return nil
}

// CanSetStatus gates the publish edge. Setting ACTIVE, or touching a record
// that is already ACTIVE, requires the publish permission; every other
// transition rides on the ownership check alone.
func CanSetStatus(p auth.Policy, c *auth.Claims, stored, requested Status) error {
	if stored != StatusActive && requested != StatusActive {
		return nil
	}
	if !p.CanSetStatusActive(c) {
		return apperr.Forbidden("publish permission required")
	}
	return nil
}
