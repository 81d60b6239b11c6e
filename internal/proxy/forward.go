// ABOUTME: Outbound call to the upstream Admin API and response relay
// ABOUTME: Preserves method/body/query, normalizes errors, coerces unusable bodies

package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atrium-labs/atrium-gateway/internal/identity"
	"github.com/atrium-labs/atrium-gateway/internal/tier"
)

// forward issues the outbound call and relays the response.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, route tier.Route, authz identity.Context, rest string, body []byte) {
	outURL := g.upstreamURL + "/admin" + rest
	if r.URL.RawQuery != "" {
		outURL += "?" + r.URL.RawQuery
	}

	// Derive from the inbound context so a caller disconnect cancels
	// the upstream call too.
	ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, outURL, reader)
	if err != nil {
		g.metrics.ObserveRequest(route.Tier.String(), http.StatusInternalServerError)
		g.writeEnvelope(w, http.StatusInternalServerError, fmt.Sprintf("building upstream request: %v", err), "")
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && len(body) > 0 {
		req.Header.Set("Content-Type", ct)
	}
	// The cookie always goes upstream, even on superadmin paths, so
	// the upstream keeps its own session checks as defense in depth.
	if cookie := r.Header.Get("Cookie"); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	// Credential injection: at most one identity header, and only one
	// the caller earned. No placeholders, no partial credentials.
	switch route.Tier {
	case tier.TenantScoped:
		if authz.TenantID != "" {
			req.Header.Set("X-Tenant-Id", authz.TenantID)
		}
	case tier.SuperadminOnly:
		if authz.IsSuperadmin {
			req.Header.Set("Authorization", "Bearer "+g.superToken)
		}
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	g.metrics.ObserveUpstream("forward", time.Since(start).Seconds())
	if err != nil {
		g.logger.Error("upstream call failed",
			"method", r.Method,
			"path", rest,
			"error", err,
		)
		g.metrics.ObserveRequest(route.Tier.String(), http.StatusBadGateway)
		g.writeEnvelope(w, http.StatusBadGateway, fmt.Sprintf("Admin API %s failed: %v", r.Method, err), "")
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.Error("reading upstream response failed",
			"method", r.Method,
			"path", rest,
			"error", err,
		)
		g.metrics.ObserveRequest(route.Tier.String(), http.StatusBadGateway)
		g.writeEnvelope(w, http.StatusBadGateway, fmt.Sprintf("Admin API %s failed: %v", r.Method, err), "")
		return
	}

	g.metrics.ObserveRequest(route.Tier.String(), resp.StatusCode)

	// Upstream errors keep their status code but get rewrapped so the
	// frontend parses one error shape everywhere.
	if resp.StatusCode >= http.StatusMultipleChoices {
		g.writeEnvelope(w, resp.StatusCode, fmt.Sprintf("Admin API %s failed: %s", r.Method, resp.Status), string(respBody))
		return
	}

	// A success the frontend cannot parse must never crash it: degrade
	// to an empty result set and log loudly.
	if !isJSONContentType(resp.Header.Get("Content-Type")) || len(bytes.TrimSpace(respBody)) == 0 || !json.Valid(respBody) {
		g.logger.Error("unusable upstream body, degrading to empty result",
			"method", r.Method,
			"path", rest,
			"status", resp.StatusCode,
			"content_type", resp.Header.Get("Content-Type"),
			"bytes", len(respBody),
		)
		g.writeJSON(w, http.StatusOK, emptyResult{Items: []json.RawMessage{}})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(respBody); err != nil {
		g.logger.Error("writing response failed", "error", err)
	}
}

// isJSONContentType reports whether ct names application/json,
// ignoring media type parameters like charset.
func isJSONContentType(ct string) bool {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct) == "application/json"
}
