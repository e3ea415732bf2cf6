package auth

import (
	"encoding/json"
	"time"
)

// Claim namespaces used by the identity provider for custom claims. Auth0
// requires custom claims to be namespaced URLs; these mirror the tenant's
// action configuration.
const (
	RolesClaim       = "https://quanghuy.dev/roles"
	PermissionsClaim = "permissions"
	GrantTypeClaim   = "gty"
)

// RoleAdmin is the only role with special meaning: it bypasses visibility
// scoping and permission gates for categories and contents. The identity
// provider assigns it with this exact casing.
const RoleAdmin = "Admin"

// Permission names a granted action. Values mirror the identity provider's
// permission catalog.
type Permission string

const (
	PermissionReadContent    Permission = "read:content"
	PermissionWriteContent   Permission = "write:content"
	PermissionPublishContent Permission = "publish:content"
	PermissionUploadImage    Permission = "upload:image"
)

// Audience unmarshals the JWT "aud" claim, which providers encode either as
// a bare string or as an array of strings.
type Audience []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Audience{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = Audience(many)
	return nil
}

// Contains reports whether the audience list includes aud.
func (a Audience) Contains(aud string) bool {
	for _, v := range a {
		if v == aud {
			return true
		}
	}
	return false
}

// Claims is the decoded, verified token payload for a request. A nil *Claims
// (or one with an empty Subject) represents an anonymous request.
type Claims struct {
	Subject     string       `json:"sub"`
	Issuer      string       `json:"iss"`
	Audience    Audience     `json:"aud"`
	GrantType   string       `json:"gty"`
	Roles       []string     `json:"https://quanghuy.dev/roles"`
	Permissions []Permission `json:"permissions"`
	ExpiresAt   int64        `json:"exp"`
	IssuedAt    int64        `json:"iat"`
}

// DeveloperClaims is the identity attached to token-less requests when the
// verifier runs in bypass mode. The Admin role passes every gate and the
// fixed subject owns any images created during the session.
func DeveloperClaims() *Claims {
	return &Claims{
		Subject: "local-dev",
		Roles:   []string{RoleAdmin},
	}
}

// Anonymous reports whether the claims represent an unauthenticated caller.
func (c *Claims) Anonymous() bool {
	return c == nil || c.Subject == ""
}

// Expired reports whether the token expiry has passed at the given instant.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != 0 && now.Unix() >= c.ExpiresAt
}

// HasRole reports whether the claims carry the named role.
func (c *Claims) HasRole(role string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the claims carry the named permission.
func (c *Claims) HasPermission(p Permission) bool {
	if c == nil {
		return false
	}
	for _, g := range c.Permissions {
		if g == p {
			return true
		}
	}
	return false
}
