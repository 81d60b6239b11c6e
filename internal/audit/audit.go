// ABOUTME: SQLite-backed audit trail for the gateway's own security decisions
// ABOUTME: Records ownership denials and superadmin grants/denials, append-only

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Action is a security decision the gateway originated.
type Action string

const (
	// ActionOwnershipDenied records a 403 from the ownership guard:
	// the session tried to read another tenant's usage data.
	ActionOwnershipDenied Action = "ownership_denied"

	// ActionSuperadminGranted records attachment of the platform
	// service credential for an allow-listed operator.
	ActionSuperadminGranted Action = "superadmin_granted"

	// ActionSuperadminDenied records a superadmin-tier request whose
	// session did not earn the service credential.
	ActionSuperadminDenied Action = "superadmin_denied"
)

// Decision is one audit entry.
type Decision struct {
	ID        string         // UUID v4, generated on append if empty
	Action    Action         // what the gateway decided
	TenantID  string         // session tenant, empty if unresolved
	Email     string         // session email, empty if unresolved
	Method    string         // inbound HTTP method
	Path      string         // inbound request path
	Timestamp time.Time      // when it happened, generated if zero
	Detail    map[string]any // additional context
}

// Filter specifies filtering options for listing decisions.
type Filter struct {
	Since    *time.Time // decisions after this time
	Until    *time.Time // decisions before this time
	Action   *Action    // filter by action
	TenantID *string    // filter by session tenant
	Limit    int        // max results (default 100, max 1000)
}

// Store persists decisions in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (or creates) the decision database at the given path.
// Parent directories are created if needed.
func NewStore(path string) (*Store, error) {
	logger := slog.Default().With("component", "audit")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	// WAL keeps appends from blocking concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("audit store initialized", "path", path)
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS decisions (
			decision_id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			tenant_id TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			method TEXT NOT NULL,
			path TEXT NOT NULL,
			ts DATETIME NOT NULL,
			detail_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(ts);
		CREATE INDEX IF NOT EXISTS idx_decisions_action ON decisions(action);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append appends a decision. Generates ID and Timestamp if not set.
func (s *Store) Append(ctx context.Context, d *Decision) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now().UTC()
	}

	var detailJSON *string
	if d.Detail != nil {
		data, err := json.Marshal(d.Detail)
		if err != nil {
			return fmt.Errorf("marshaling decision detail: %w", err)
		}
		str := string(data)
		detailJSON = &str
	}

	query := `
		INSERT INTO decisions (decision_id, action, tenant_id, email, method, path, ts, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID,
		d.Action,
		d.TenantID,
		d.Email,
		d.Method,
		d.Path,
		d.Timestamp.UTC().Format(time.RFC3339),
		detailJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting decision: %w", err)
	}

	s.logger.Debug("appended decision",
		"id", d.ID,
		"action", d.Action,
		"tenant", d.TenantID,
		"path", d.Method+" "+d.Path,
	)
	return nil
}

// normalizeLimit applies default (100) and cap (1000) to a list limit.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

const listQuery = `
	SELECT decision_id, action, tenant_id, email, method, path, ts, detail_json
	FROM decisions
	WHERE (? IS NULL OR ts >= ?)
	  AND (? IS NULL OR ts <= ?)
	  AND (? IS NULL OR action = ?)
	  AND (? IS NULL OR tenant_id = ?)
	ORDER BY ts DESC
	LIMIT ?
`

// List returns decisions matching the filter, most recent first.
func (s *Store) List(ctx context.Context, f Filter) ([]Decision, error) {
	var sinceStr, untilStr, actionStr *string
	if f.Since != nil {
		str := f.Since.UTC().Format(time.RFC3339)
		sinceStr = &str
	}
	if f.Until != nil {
		str := f.Until.UTC().Format(time.RFC3339)
		untilStr = &str
	}
	if f.Action != nil {
		str := string(*f.Action)
		actionStr = &str
	}

	rows, err := s.db.QueryContext(ctx, listQuery,
		sinceStr, sinceStr,
		untilStr, untilStr,
		actionStr, actionStr,
		f.TenantID, f.TenantID,
		normalizeLimit(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}
	return decisions, nil
}

// scanDecision scans a row into a Decision.
func scanDecision(scanner interface{ Scan(dest ...any) error }) (Decision, error) {
	var d Decision
	var actionStr, tsStr string
	var detailJSON *string

	if err := scanner.Scan(
		&d.ID,
		&actionStr,
		&d.TenantID,
		&d.Email,
		&d.Method,
		&d.Path,
		&tsStr,
		&detailJSON,
	); err != nil {
		return d, fmt.Errorf("scanning decision: %w", err)
	}

	d.Action = Action(actionStr)
	var err error
	d.Timestamp, err = time.Parse(time.RFC3339, tsStr)
	if err != nil {
		return d, fmt.Errorf("parsing timestamp: %w", err)
	}

	if detailJSON != nil {
		if err := json.Unmarshal([]byte(*detailJSON), &d.Detail); err != nil {
			return d, fmt.Errorf("unmarshaling detail: %w", err)
		}
	}
	return d, nil
}
