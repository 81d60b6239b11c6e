// ABOUTME: Tests for the security-decision audit store
// ABOUTME: Covers Append ID/timestamp generation and filtered listing

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "decisions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Append(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	d := &Decision{
		Action:   ActionOwnershipDenied,
		TenantID: "t2",
		Email:    "owner@tenant.io",
		Method:   "GET",
		Path:     "/api/admin/billing/tenants/t1/usage",
		Detail:   map[string]any{"path_tenant_id": "t1"},
	}

	require.NoError(t, store.Append(ctx, d))

	// Should have generated ID and timestamp
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.Timestamp.IsZero())
}

func TestStore_List_NoFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, action := range []Action{ActionOwnershipDenied, ActionSuperadminGranted, ActionSuperadminDenied} {
		d := &Decision{
			Action:    action,
			TenantID:  "t1",
			Method:    "GET",
			Path:      "/api/admin/billing/tenants",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.Append(ctx, d))
	}

	decisions, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, decisions, 3)

	// Most recent first
	assert.Equal(t, ActionSuperadminDenied, decisions[0].Action)
	assert.Equal(t, ActionOwnershipDenied, decisions[2].Action)
}

func TestStore_List_FilterByAction(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, action := range []Action{ActionOwnershipDenied, ActionSuperadminGranted, ActionSuperadminGranted} {
		require.NoError(t, store.Append(ctx, &Decision{
			Action: action,
			Method: "DELETE",
			Path:   "/api/admin/tenants/abc",
		}))
	}

	granted := ActionSuperadminGranted
	decisions, err := store.List(ctx, Filter{Action: &granted})
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	for _, d := range decisions {
		assert.Equal(t, ActionSuperadminGranted, d.Action)
	}
}

func TestStore_List_FilterByTenant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, tenant := range []string{"t1", "t2", "t1"} {
		require.NoError(t, store.Append(ctx, &Decision{
			Action:   ActionOwnershipDenied,
			TenantID: tenant,
			Method:   "GET",
			Path:     "/api/admin/billing/tenants/x/usage",
		}))
	}

	t1 := "t1"
	decisions, err := store.List(ctx, Filter{TenantID: &t1})
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}

func TestStore_List_TimeWindow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, &Decision{
			Action:    ActionSuperadminDenied,
			Method:    "GET",
			Path:      "/api/admin/governance/policies",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	since := base.Add(90 * time.Minute)
	until := base.Add(210 * time.Minute)
	decisions, err := store.List(ctx, Filter{Since: &since, Until: &until})
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}

func TestStore_DetailRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, &Decision{
		Action: ActionOwnershipDenied,
		Method: "GET",
		Path:   "/api/admin/billing/tenants/t1/usage",
		Detail: map[string]any{"path_tenant_id": "t1", "attempt": float64(3)},
	}))

	decisions, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Equal(t, "t1", decisions[0].Detail["path_tenant_id"])
	assert.Equal(t, float64(3), decisions[0].Detail["attempt"])
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 100, normalizeLimit(0))
	assert.Equal(t, 100, normalizeLimit(-5))
	assert.Equal(t, 1000, normalizeLimit(5000))
	assert.Equal(t, 42, normalizeLimit(42))
}
