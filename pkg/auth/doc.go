// Package auth implements token verification and authorization policy for the
// content API.
//
// Tokens are RS256 JWTs issued by an external OpenID Connect provider (Auth0
// style). The verifier fetches the issuer's JWKS document and checks the
// signature, issuer, audience and expiry; it never mints tokens itself.
//
// Two kinds of principals exist:
//
//   - Interactive users, identified by the token subject. Their roles and
//     permissions arrive in namespaced custom claims.
//   - Machine clients (client-credentials grant), identified by a subject of
//     the form "<clientID>@clients". Machine clients are treated as trusted
//     backend callers and skip the per-permission gates, except for image
//     ownership which always binds to the subject.
//
// Policy decisions (admin check, permission gates, publish gate, ownership)
// live in Policy and operate purely on Claims so they can be exercised in
// isolation.
package auth
