package auth

// Policy makes authorization decisions from verified claims. It is pure:
// every method depends only on the claims and the configured tenant
// identifiers, so decisions can be table-tested without any HTTP plumbing.
type Policy struct {
	// ClientID is the tenant's machine client ID. A client-credentials token
	// whose subject is "<ClientID>@clients" is recognised as the trusted
	// machine client.
	ClientID string

	// Audience is the API identifier tokens must be minted for.
	Audience string
}

// IsMachineClient reports whether the claims belong to the tenant's trusted
// machine client: a client-credentials grant, the expected audience, and the
// "<clientID>@clients" subject Auth0 assigns such tokens.
func (p Policy) IsMachineClient(c *Claims) bool {
	if c.Anonymous() {
		return false
	}
	return c.GrantType == "client-credentials" &&
		c.Subject == p.ClientID+"@clients" &&
		c.Audience.Contains(p.Audience)
}

// IsAdmin reports whether the caller may bypass visibility scoping and
// permission gates. Machine clients count as admin for category and content
// operations; image operations never consult this and stay owner-bound.
func (p Policy) IsAdmin(c *Claims) bool {
	if c.Anonymous() {
		return false
	}
	return c.HasRole(RoleAdmin) || p.IsMachineClient(c)
}

// HasPermissions reports whether the caller holds every listed permission.
// Admins and machine clients pass unconditionally. An anonymous caller has
// an empty grant list, so it fails only when perms is non-empty.
func (p Policy) HasPermissions(c *Claims, perms ...Permission) bool {
	if p.IsAdmin(c) {
		return true
	}
	for _, perm := range perms {
		if !c.HasPermission(perm) {
			return false
		}
	}
	return true
}

// CanSetStatusActive gates the ACTIVE status on content writes. Callers
// without publish:content may create and edit drafts but never publish.
func (p Policy) CanSetStatusActive(c *Claims) bool {
	return p.HasPermissions(c, PermissionPublishContent)
}

// Owns reports whether the caller's subject matches the record owner.
// Anonymous callers own nothing.
func (p Policy) Owns(c *Claims, ownerID string) bool {
	if c.Anonymous() {
		return false
	}
	return c.Subject == ownerID
}
