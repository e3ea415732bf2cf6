package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/quanghuy1242/content-api/pkg/apperr"
)

// Mode selects how the verifier treats incoming tokens.
type Mode string

const (
	// ModeEnforce verifies signatures against the issuer's JWKS.
	ModeEnforce Mode = "enforce"

	// ModeBypass decodes claims without checking the signature. Local
	// development only; never enable in production.
	ModeBypass Mode = "bypass"
)

// keySetTTL bounds how long a fetched JWKS is reused before the verifier
// re-discovers it. Matches the issuer's key rotation guidance.
const keySetTTL = 24 * time.Hour

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	// Issuer is the token issuer URL, with trailing slash, e.g.
	// "https://tenant.auth0.com/". The JWKS document is expected at
	// "<Issuer>.well-known/jwks.json".
	Issuer string

	// Audience is the API identifier tokens must carry in "aud".
	Audience string

	// Mode defaults to ModeEnforce when empty.
	Mode Mode

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Verifier validates bearer tokens and produces Claims. Remote key sets are
// cached per issuer and refreshed after keySetTTL.
type Verifier struct {
	config  VerifierConfig
	keySets *expirable.LRU[string, oidc.KeySet]
	clock   func() time.Time
}

// NewVerifier creates a Verifier. It does not contact the issuer; key sets
// are fetched lazily on first verification.
func NewVerifier(config VerifierConfig) (*Verifier, error) {
	if config.Issuer == "" {
		return nil, fmt.Errorf("auth: issuer is required")
	}
	if config.Audience == "" {
		return nil, fmt.Errorf("auth: audience is required")
	}
	if config.Mode == "" {
		config.Mode = ModeEnforce
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Verifier{
		config:  config,
		keySets: expirable.NewLRU[string, oidc.KeySet](4, nil, keySetTTL),
		clock:   clock,
	}, nil
}

// Bypassed reports whether the verifier runs in bypass mode. The auth
// middleware consults this to let token-less requests through as the
// local developer identity.
func (v *Verifier) Bypassed() bool {
	return v.config.Mode == ModeBypass
}

// Verify checks the raw compact JWT and returns its claims. All failure
// paths return apperr.KindUnauthorized so the HTTP layer maps them to 401
// without inspecting the cause.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, apperr.Unauthorized("missing token")
	}

	var payload []byte
	if v.config.Mode == ModeBypass {
		var err error
		payload, err = unverifiedPayload(rawToken)
		if err != nil {
			return nil, apperr.Wrap(apperr.Unauthorized("malformed token"), err)
		}
	} else {
		ks := v.keySet(v.config.Issuer)
		verified, err := ks.VerifySignature(ctx, rawToken)
		if err != nil {
			return nil, apperr.Wrap(apperr.Unauthorized("invalid token signature"), err)
		}
		payload = verified
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, apperr.Wrap(apperr.Unauthorized("malformed token claims"), err)
	}

	if claims.Issuer != v.config.Issuer {
		return nil, apperr.Unauthorized("token issuer mismatch")
	}
	if !claims.Audience.Contains(v.config.Audience) {
		return nil, apperr.Unauthorized("token audience mismatch")
	}
	if claims.Expired(v.clock()) {
		return nil, apperr.Unauthorized("token expired")
	}
	if claims.Subject == "" {
		return nil, apperr.Unauthorized("token subject missing")
	}

	return &claims, nil
}

// keySet returns the cached key set for the issuer, constructing it on the
// first call and after TTL expiry.
func (v *Verifier) keySet(issuer string) oidc.KeySet {
	if ks, ok := v.keySets.Get(issuer); ok {
		return ks
	}
	jwksURL := issuer + ".well-known/jwks.json"
	ks := oidc.NewRemoteKeySet(context.Background(), jwksURL)
	v.keySets.Add(issuer, ks)
	return ks
}

// unverifiedPayload extracts the claims segment of a compact JWT without
// signature verification.
func unverifiedPayload(rawToken string) ([]byte, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected 3 token segments, got %d", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}
