// Package newsroom is the backend core for a news publishing platform:
// account registration and authentication, purpose-scoped token issuance
// (access, refresh, email verification, password reset), and the news and
// category repositories behind the REST surface.
//
// Token lifecycle:
//   - TokenCodec signs and verifies compact HS256 claim sets. TokenManager
//     layers the four purpose-scoped issuers on top, each with its own
//     secret, audience, and lifetime, so a token minted for one flow is
//     structurally rejected by every other flow.
//   - Refresh tokens wrap the access token string as their subject. The
//     exchange re-decodes the embedded access token, so refresh validation
//     never needs a server-side session store.
//
// Account state:
//   - Accounts carry is_active and is_verified flags plus an all-or-nothing
//     pending password trio (staged hash, correlation token, expiry). The
//     verification and reset commands drive every transition; lookups that
//     would reveal account existence collapse to uniform no-op results.
//
// Email delivery:
//   - EmailDispatcher runs fire-and-forget relative to the triggering
//     request. Delivery failures are logged, never surfaced to the caller.
package newsroom
