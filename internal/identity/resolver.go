// ABOUTME: Resolves the caller's session against the upstream identity endpoint
// ABOUTME: Fail-open for tenant identity, fail-closed for superadmin privilege

package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/atrium-labs/atrium-gateway/internal/tier"
)

// Context is what the gateway learned about the caller for one request.
// The zero value means "no identity": no tenant, no privilege.
type Context struct {
	// TenantID is the session's tenant, empty if unknown.
	TenantID string

	// Email is the session's email, empty if unknown. Used for audit
	// records only, never for authorization outside the PolicyStore.
	Email string

	// IsSuperadmin is the allow-list verdict. It is only ever set for
	// SuperadminOnly requests and fails closed: any resolution failure
	// leaves it false.
	IsSuperadmin bool

	// Resolved reports whether the upstream identity call succeeded.
	// An unresolved context means "no additional credential", not an
	// error: the request still forwards and the upstream remains the
	// final arbiter of session validity.
	Resolved bool
}

// whoAmI is the upstream GET /auth/me response shape. The upstream may
// return more fields; the gateway only reads these.
type whoAmI struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Resolver resolves forwarded session cookies against the upstream
// Admin API's identity endpoint.
type Resolver struct {
	baseURL string
	policy  PolicyStore
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver creates a Resolver for the given upstream base URL.
// timeout bounds each identity call; zero means 10s.
func NewResolver(baseURL string, policy PolicyStore, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		baseURL: baseURL,
		policy:  policy,
		client:  &http.Client{},
		timeout: timeout,
		logger:  slog.Default().With("component", "identity"),
	}
}

// Resolve produces the authorization Context for a classified request.
// Public requests skip the upstream call entirely. All failures degrade
// to an unresolved Context with a warning log; Resolve never returns an
// error because identity failure must not block forwarding.
func (r *Resolver) Resolve(ctx context.Context, cookie string, t tier.Tier) Context {
	if t == tier.Public {
		return Context{}
	}

	who, err := r.whoAmI(ctx, cookie)
	if err != nil {
		r.logger.Warn("identity resolution failed, proceeding without identity",
			"tier", t.String(),
			"error", err,
		)
		return Context{}
	}

	c := Context{
		TenantID: who.TenantID,
		Email:    who.Email,
		Resolved: true,
	}
	if t == tier.SuperadminOnly {
		c.IsSuperadmin = r.policy.IsSuperadmin(who.Email)
	}
	return c
}

// whoAmI calls the upstream identity endpoint with the forwarded cookie.
func (r *Resolver) whoAmI(ctx context.Context, cookie string) (*whoAmI, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("building identity request: %w", err)
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling identity endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity endpoint returned %s", resp.Status)
	}

	var who whoAmI
	if err := json.NewDecoder(resp.Body).Decode(&who); err != nil {
		return nil, fmt.Errorf("decoding identity response: %w", err)
	}
	return &who, nil
}
