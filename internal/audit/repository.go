package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	// timeFormat is fixed width so created_at sorts lexically.
	timeFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

// Repository defines the audit trail operations.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) (*ListResult, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a new audit repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Create inserts an entry. ID, Source and CreatedAt are filled in when empty.
func (r *SQLiteRepository) Create(ctx context.Context, e *Entry) error {
	if e == nil || e.Action == "" || e.EntityType == "" {
		return ErrInvalidEntry
	}
	if e.ID == "" {
		e.ID = "aud-" + uuid.NewString()
	}
	if e.Source == "" {
		e.Source = SourceAPI
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	var details sql.NullString
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshalling audit details: %w", err)
		}
		details = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, entity_type, entity_id, actor_id, source, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Action, e.EntityType,
		nullableString(e.EntityID), nullableString(e.ActorID),
		e.Source, details,
		e.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// List returns entries matching f, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) (*ListResult, error) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	f.Limit = min(f.Limit, maxLimit)
	f.Offset = max(f.Offset, 0)

	var conditions []string
	var args []any
	for _, c := range []struct{ column, value string }{
		{"action", f.Action},
		{"entity_type", f.EntityType},
		{"entity_id", f.EntityID},
		{"actor_id", f.ActorID},
	} {
		if c.value != "" {
			conditions = append(conditions, c.column+" = ?")
			args = append(args, c.value)
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	//nolint:gosec // WHERE built from fixed column names and ? placeholders
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	//nolint:gosec // WHERE built from fixed column names and ? placeholders
	query := `SELECT id, action, entity_type, entity_id, actor_id, source, details, created_at
		FROM audit_logs ` + where + ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   f.Limit,
		Offset:  f.Offset,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*Entry, error) {
	var e Entry
	var entityID, actorID, details sql.NullString
	var createdAt string

	if err := s.Scan(&e.ID, &e.Action, &e.EntityType,
		&entityID, &actorID, &e.Source, &details, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning audit entry: %w", err)
	}
	e.EntityID = entityID.String
	e.ActorID = actorID.String

	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
			return nil, fmt.Errorf("decoding audit details for %s: %w", e.ID, err)
		}
	}

	t, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing audit timestamp %q: %w", createdAt, err)
	}
	e.CreatedAt = t
	return &e, nil
}

// nullableString maps "" to NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
