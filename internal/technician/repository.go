package technician

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the persistence operations for profiles.
type Repository interface {
	Get(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Create(ctx context.Context, p *Profile) error
	UpdatePhoneNumber(ctx context.Context, id, phone string) error
	UpdateServiceArea(ctx context.Context, id, area string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a new SQLite-backed profile repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

const profileColumns = `id, email, name, phone_number, service_area, role, created_at, updated_at`

// Get returns the profile with the given ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM technicians WHERE id = ?`, id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying technician %s: %w", id, err)
	}
	return p, nil
}

// List returns every profile ordered by service area, then name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM technicians ORDER BY service_area, name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying technicians: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning technician: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating technicians: %w", err)
	}
	return profiles, nil
}

// Create validates and inserts a profile. CreatedAt and UpdatedAt are set
// on p.
func (r *SQLiteRepository) Create(ctx context.Context, p *Profile) error {
	if err := Validate(p); err != nil {
		return err
	}

	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO technicians (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Name, p.PhoneNumber, p.ServiceArea, p.Role,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProfileExists
		}
		return fmt.Errorf("inserting technician %s: %w", p.ID, err)
	}

	p.CreatedAt, p.UpdatedAt = now.Truncate(time.Second), now.Truncate(time.Second)
	return nil
}

// UpdatePhoneNumber replaces the profile's phone number.
func (r *SQLiteRepository) UpdatePhoneNumber(ctx context.Context, id, phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) > maxPhoneLength {
		return fmt.Errorf("%w: phone number exceeds %d characters", ErrInvalidProfile, maxPhoneLength)
	}
	return r.updateColumn(ctx, id, "phone_number", phone)
}

// UpdateServiceArea moves the technician to another area. The area is
// stored in canonical form; blank clears it.
func (r *SQLiteRepository) UpdateServiceArea(ctx context.Context, id, area string) error {
	canonical, err := NormaliseServiceArea(area)
	if err != nil {
		return err
	}
	return r.updateColumn(ctx, id, "service_area", canonical)
}

// updateColumn sets one whitelisted column. column is never caller input.
func (r *SQLiteRepository) updateColumn(ctx context.Context, id, column, value string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE technicians SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, r.now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating technician %s %s: %w", id, column, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(s rowScanner) (*Profile, error) {
	var p Profile
	var createdAt, updatedAt string
	if err := s.Scan(&p.ID, &p.Email, &p.Name, &p.PhoneNumber, &p.ServiceArea, &p.Role,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled
	return &p, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
