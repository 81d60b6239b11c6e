// Package tier classifies inbound admin API requests into trust tiers.
//
// Every request that enters the gateway is classified exactly once,
// before any network call, into one of three tiers:
//
//   - Public: no credential is injected upstream.
//   - TenantScoped: the request acts within the caller's own tenant and
//     earns the session's X-Tenant-Id header.
//   - SuperadminOnly: the request touches cross-tenant billing or
//     governance resources and earns the platform service credential
//     only if the session belongs to an allow-listed operator.
//
// Classification is a pure function over (method, path segments),
// driven by a priority-ordered route table rather than positional
// segment indexing. Two narrow tenant self-serve exceptions carve
// TenantScoped routes out of the otherwise superadmin-only billing
// space:
//
//	billing/tenants/{id}/usage   (ownership-checked against the session)
//	billing/me/...               (the session tenant is authoritative)
//
// Unknown paths deliberately default to TenantScoped: the upstream
// Admin API owns routing correctness, the gateway owns credential
// selection.
package tier
