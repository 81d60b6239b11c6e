// ABOUTME: Trust-tier classification for inbound admin API requests
// ABOUTME: Pure route-table matching over method and path segments, no I/O

package tier

import (
	"net/http"
	"strings"
)

// Tier is the credential class a request's target resource requires.
type Tier int

const (
	// Public resources need no injected credential.
	Public Tier = iota

	// TenantScoped resources are isolated per tenant and reached with
	// the session's X-Tenant-Id header.
	TenantScoped

	// SuperadminOnly resources require the platform service credential
	// and an allow-listed operator session.
	SuperadminOnly
)

// String returns the tier name used in logs and metrics labels.
func (t Tier) String() string {
	switch t {
	case Public:
		return "public"
	case TenantScoped:
		return "tenant"
	case SuperadminOnly:
		return "superadmin"
	default:
		return "unknown"
	}
}

// Route is the classification result for a single request.
type Route struct {
	Tier Tier

	// OwnershipCheck marks routes whose path embeds a tenant ID that
	// must match the session's tenant before forwarding.
	OwnershipCheck bool

	// PathTenantID is the tenant ID captured from the path when
	// OwnershipCheck is set.
	PathTenantID string
}

// Pattern tokens. A literal segment matches itself exactly. The rest
// segment must be the last token and matches zero or more trailing
// segments.
const (
	segAny     = "*"        // any single segment
	segCapture = "{tenant}" // any single segment, captured as the path tenant ID
	segRest    = "..."      // zero or more trailing segments
)

// rule is one row of the classification table.
type rule struct {
	method    string // empty matches any method
	pattern   []string
	tier      Tier
	ownership bool
}

// The table is evaluated top to bottom; first match wins. The tenant
// self-serve exceptions sit above the blanket billing rule so they can
// override it.
var rules = []rule{
	// A tenant may read its own usage through the superadmin-shaped
	// billing path; ownership is verified against the session.
	{pattern: []string{"billing", "tenants", segCapture, "usage"}, tier: TenantScoped, ownership: true},

	// billing/me/* is always the session's own tenant.
	{pattern: []string{"billing", "me", segRest}, tier: TenantScoped},

	{pattern: []string{"billing", segRest}, tier: SuperadminOnly},
	{pattern: []string{"governance", segRest}, tier: SuperadminOnly},
	{pattern: []string{"superadmin", segRest}, tier: SuperadminOnly},

	// Deleting a tenant is a platform operation.
	{method: http.MethodDelete, pattern: []string{"tenants", segAny}, tier: SuperadminOnly},
}

// Classify maps a method and path to a Route. It is deterministic and
// performs no I/O. Paths that match no rule, including empty ones,
// default to TenantScoped: the upstream is the final authority on
// whether a resource exists, the gateway only selects credentials.
func Classify(method string, segments []string) Route {
	for _, r := range rules {
		if r.method != "" && r.method != method {
			continue
		}
		tenantID, ok := match(r.pattern, segments)
		if !ok {
			continue
		}
		return Route{Tier: r.tier, OwnershipCheck: r.ownership, PathTenantID: tenantID}
	}
	return Route{Tier: TenantScoped}
}

// match tests segments against a pattern and returns the captured
// tenant ID, if any.
func match(pattern, segments []string) (string, bool) {
	var captured string
	for i, tok := range pattern {
		if tok == segRest {
			// Trailing rest token: everything beyond this point matches.
			return captured, true
		}
		if i >= len(segments) {
			return "", false
		}
		switch tok {
		case segAny:
		case segCapture:
			captured = segments[i]
		default:
			if tok != segments[i] {
				return "", false
			}
		}
	}
	if len(segments) != len(pattern) {
		return "", false
	}
	return captured, true
}

// Split breaks a URL path into its non-empty segments.
func Split(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
