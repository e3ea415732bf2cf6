package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testPolicy() Policy {
	return Policy{
		ClientID: "machine-client-id",
		Audience: "https://api.quanghuy.dev",
	}
}

func TestAudienceUnmarshal(t *testing.T) {
	var single Audience
	assert.NoError(t, single.UnmarshalJSON([]byte(`"https://api.quanghuy.dev"`)))
	assert.Equal(t, Audience{"https://api.quanghuy.dev"}, single)

	var many Audience
	assert.NoError(t, many.UnmarshalJSON([]byte(`["a","b"]`)))
	assert.Equal(t, Audience{"a", "b"}, many)
	assert.True(t, many.Contains("b"))
	assert.False(t, many.Contains("c"))

	var bad Audience
	assert.Error(t, bad.UnmarshalJSON([]byte(`42`)))
}

func TestClaimsAnonymous(t *testing.T) {
	var nilClaims *Claims
	assert.True(t, nilClaims.Anonymous())
	assert.True(t, (&Claims{}).Anonymous())
	assert.False(t, (&Claims{Subject: "auth0|u1"}).Anonymous())
}

func TestClaimsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	assert.False(t, (&Claims{}).Expired(now), "zero exp never expires")
	assert.False(t, (&Claims{ExpiresAt: now.Unix() + 1}).Expired(now))
	assert.True(t, (&Claims{ExpiresAt: now.Unix()}).Expired(now))
}

func TestPolicyIsMachineClient(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name   string
		claims *Claims
		want   bool
	}{
		{
			name: "machine client",
			claims: &Claims{
				Subject:   "machine-client-id@clients",
				GrantType: "client-credentials",
				Audience:  Audience{"https://api.quanghuy.dev"},
			},
			want: true,
		},
		{
			name: "wrong grant type",
			claims: &Claims{
				Subject:   "machine-client-id@clients",
				GrantType: "authorization_code",
				Audience:  Audience{"https://api.quanghuy.dev"},
			},
			want: false,
		},
		{
			name: "foreign client id",
			claims: &Claims{
				Subject:   "other-client@clients",
				GrantType: "client-credentials",
				Audience:  Audience{"https://api.quanghuy.dev"},
			},
			want: false,
		},
		{
			name: "wrong audience",
			claims: &Claims{
				Subject:   "machine-client-id@clients",
				GrantType: "client-credentials",
				Audience:  Audience{"https://other.example.com"},
			},
			want: false,
		},
		{name: "anonymous", claims: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsMachineClient(tt.claims))
		})
	}
}

func TestPolicyIsAdmin(t *testing.T) {
	p := testPolicy()

	assert.True(t, p.IsAdmin(&Claims{Subject: "auth0|u1", Roles: []string{"Admin"}}))
	assert.False(t, p.IsAdmin(&Claims{Subject: "auth0|u1", Roles: []string{"editor"}}))
	assert.False(t, p.IsAdmin(nil))
	assert.True(t, p.IsAdmin(&Claims{
		Subject:   "machine-client-id@clients",
		GrantType: "client-credentials",
		Audience:  Audience{"https://api.quanghuy.dev"},
	}), "machine client counts as admin")
}

func TestPolicyHasPermissions(t *testing.T) {
	p := testPolicy()

	writer := &Claims{
		Subject:     "auth0|u1",
		Permissions: []Permission{PermissionReadContent, PermissionWriteContent},
	}

	assert.True(t, p.HasPermissions(writer, PermissionWriteContent))
	assert.True(t, p.HasPermissions(writer, PermissionReadContent, PermissionWriteContent))
	assert.False(t, p.HasPermissions(writer, PermissionPublishContent))
	assert.False(t, p.HasPermissions(nil, PermissionReadContent))

	// An anonymous caller only fails when something is actually required.
	assert.True(t, p.HasPermissions(nil))
	assert.True(t, p.HasPermissions(&Claims{}))

	admin := &Claims{Subject: "auth0|boss", Roles: []string{"Admin"}}
	assert.True(t, p.HasPermissions(admin, PermissionPublishContent, PermissionUploadImage),
		"admin bypasses permission gates")
}

func TestPolicyCanSetStatusActive(t *testing.T) {
	p := testPolicy()

	publisher := &Claims{Subject: "auth0|u1", Permissions: []Permission{PermissionPublishContent}}
	drafter := &Claims{Subject: "auth0|u2", Permissions: []Permission{PermissionWriteContent}}

	assert.True(t, p.CanSetStatusActive(publisher))
	assert.False(t, p.CanSetStatusActive(drafter))
	assert.False(t, p.CanSetStatusActive(nil))
}

func TestPolicyOwns(t *testing.T) {
	p := testPolicy()

	assert.True(t, p.Owns(&Claims{Subject: "auth0|u1"}, "auth0|u1"))
	assert.False(t, p.Owns(&Claims{Subject: "auth0|u1"}, "auth0|u2"))
	assert.False(t, p.Owns(nil, "auth0|u1"))
	assert.False(t, p.Owns(&Claims{Subject: "auth0|u1"}, ""))
}
