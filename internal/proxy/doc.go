// Package proxy is the inbound request gateway between the admin
// frontend and the upstream Admin API.
//
// # Pipeline
//
// Each request flows through a strictly sequential, request-local
// pipeline:
//
//	cookie extraction → trust-tier classification → identity resolution
//	→ ownership guard → credential injection → forward → response relay
//
// At most two network calls happen per request (identity, forward),
// both derived from the inbound request context so caller disconnects
// cancel them, and both bounded by configurable timeouts.
//
// # Failure semantics
//
// Classification never fails. Identity resolution fails open: a request
// whose session cannot be resolved still forwards, just without a
// credential, and the upstream stays the single authority on session
// validity. Superadmin credential attachment fails closed: the bearer
// token is only attached on an affirmative allow-list match. The
// ownership guard fails closed only when both tenant IDs are known and
// unequal. That 403 is the one security decision the gateway
// originates itself.
//
// # Response relay
//
// Upstream statuses >= 300 are relayed with their original status code
// but a normalized body:
//
//	{"error": "admin_proxy_error", "details": "...", "response": "..."}
//
// Successful responses with a non-JSON content type, an empty body, or
// malformed JSON are coerced to 200 {"items": [], "next_cursor": null}
// rather than letting a broken upstream body crash the frontend.
// Network failures and timeouts become a 502 with the same envelope.
// Every response carries Content-Type: application/json.
package proxy
