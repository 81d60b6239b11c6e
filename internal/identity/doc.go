// Package identity resolves the caller's session into an authorization
// context.
//
// The gateway never parses the session cookie itself; it forwards the
// opaque cookie to the upstream's GET /auth/me endpoint and trusts the
// answer. Two distinct failure policies apply to that answer:
//
//   - Tenant identity fails open. If the identity call errors, the
//     request proceeds with no tenant header and the upstream rejects
//     invalid sessions itself, keeping a single source of truth for
//     "is this session valid".
//   - Superadmin privilege fails closed. The service credential is only
//     attached when the resolved email is affirmatively on the
//     allow-list; any indeterminacy leaves it off.
//
// The allow-list lives behind the PolicyStore interface so the
// privilege source can later move from an environment variable to a
// real policy table without touching routing or forwarding code.
package identity
