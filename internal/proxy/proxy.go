// ABOUTME: Inbound request gateway: classification, ownership guard, credential injection
// ABOUTME: The only place where a wrong decision leaks data instead of pixels

package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/atrium-labs/atrium-gateway/internal/audit"
	"github.com/atrium-labs/atrium-gateway/internal/identity"
	"github.com/atrium-labs/atrium-gateway/internal/metrics"
	"github.com/atrium-labs/atrium-gateway/internal/tier"
)

// CallerPrefix is the path prefix the frontend calls; everything after
// it is rewritten onto the upstream's /admin space.
const CallerPrefix = "/api/admin"

// SessionResolver resolves the forwarded session cookie for a
// classified request.
type SessionResolver interface {
	Resolve(ctx context.Context, cookie string, t tier.Tier) identity.Context
}

// AuditLog records the gateway's own security decisions.
type AuditLog interface {
	Append(ctx context.Context, d *audit.Decision) error
}

// Config holds the gateway's upstream wiring.
type Config struct {
	// UpstreamURL is the Admin API base URL. Empty is a configuration
	// error surfaced as a 500 on every request, never a silent default.
	UpstreamURL string

	// SuperadminToken is the platform service bearer credential.
	SuperadminToken string

	// ForwardTimeout bounds each outbound forward; zero means 10s.
	ForwardTimeout time.Duration
}

// errorEnvelope is the stable failure shape the frontend receives,
// regardless of which upstream endpoint failed.
type errorEnvelope struct {
	Error    string `json:"error"`
	Details  string `json:"details"`
	Response string `json:"response,omitempty"`
}

// emptyResult is the coerced success shape for empty or unusable
// upstream bodies.
type emptyResult struct {
	Items      []json.RawMessage `json:"items"`
	NextCursor *string           `json:"next_cursor"`
}

// Gateway forwards /api/admin requests to the upstream Admin API with
// the credentials the caller earned, and nothing more.
type Gateway struct {
	upstreamURL string
	superToken  string
	timeout     time.Duration
	resolver    SessionResolver
	audit       AuditLog
	metrics     *metrics.Metrics
	client      *http.Client
	logger      *slog.Logger
}

// New creates a Gateway. auditLog and m may be nil to disable the
// audit trail and metrics respectively.
func New(cfg Config, resolver SessionResolver, auditLog AuditLog, m *metrics.Metrics) *Gateway {
	timeout := cfg.ForwardTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		upstreamURL: strings.TrimRight(cfg.UpstreamURL, "/"),
		superToken:  cfg.SuperadminToken,
		timeout:     timeout,
		resolver:    resolver,
		audit:       auditLog,
		metrics:     m,
		// Redirects are relayed to the caller, not followed.
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: slog.Default().With("component", "proxy"),
	}
}

// ServeHTTP runs the full pipeline for one request: classify, resolve
// identity, guard ownership, inject credentials, forward, relay.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if g.upstreamURL == "" {
		g.writeEnvelope(w, http.StatusInternalServerError, "upstream Admin API base URL is not configured", "")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, CallerPrefix)
	segments := tier.Split(rest)
	route := tier.Classify(r.Method, segments)

	// Read the body once, as raw bytes. It is forwarded verbatim,
	// never re-parsed, so payloads cannot be silently mutated.
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			g.writeEnvelope(w, http.StatusBadRequest, fmt.Sprintf("reading request body: %v", err), "")
			return
		}
	}

	cookie := r.Header.Get("Cookie")

	start := time.Now()
	authz := g.resolver.Resolve(r.Context(), cookie, route.Tier)
	if route.Tier != tier.Public {
		g.metrics.ObserveUpstream("identity", time.Since(start).Seconds())
	}

	// Ownership guard: the one security decision the gateway makes
	// itself. Only blocks when both tenant IDs are known and unequal;
	// an unresolved session forwards without a tenant header so the
	// upstream can reject it without the gateway becoming an oracle
	// for which tenant IDs exist.
	if route.OwnershipCheck && authz.TenantID != "" && authz.TenantID != route.PathTenantID {
		g.record(r, audit.ActionOwnershipDenied, authz, map[string]any{
			"path_tenant_id": route.PathTenantID,
		})
		g.metrics.ObserveRequest(route.Tier.String(), http.StatusForbidden)
		g.logger.Warn("ownership guard denied request",
			"session_tenant", authz.TenantID,
			"path_tenant", route.PathTenantID,
			"path", r.URL.Path,
		)
		g.writeJSON(w, http.StatusForbidden, errorEnvelope{
			Error:   "Forbidden",
			Details: "You can only access your own usage data",
		})
		return
	}

	if route.Tier == tier.SuperadminOnly {
		action := audit.ActionSuperadminDenied
		if authz.IsSuperadmin {
			action = audit.ActionSuperadminGranted
		}
		g.record(r, action, authz, nil)
	}

	g.forward(w, r, route, authz, rest, body)
}

// record appends an audit decision, best-effort.
func (g *Gateway) record(r *http.Request, action audit.Action, authz identity.Context, detail map[string]any) {
	if g.audit == nil {
		return
	}
	d := &audit.Decision{
		Action:   action,
		TenantID: authz.TenantID,
		Email:    authz.Email,
		Method:   r.Method,
		Path:     r.URL.Path,
		Detail:   detail,
	}
	if err := g.audit.Append(r.Context(), d); err != nil {
		g.logger.Warn("audit append failed", "action", action, "error", err)
	}
}

// writeJSON writes v as the response body with the given status.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("writing response failed", "error", err)
	}
}

// writeEnvelope writes the normalized error envelope.
func (g *Gateway) writeEnvelope(w http.ResponseWriter, status int, details, response string) {
	g.writeJSON(w, status, errorEnvelope{
		Error:    "admin_proxy_error",
		Details:  details,
		Response: response,
	})
}
