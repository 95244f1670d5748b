package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kevann/nosteq-core/internal/infrastructure/database"
	"github.com/kevann/nosteq-core/internal/onu"
)

const (
	// BatchSize is how many rows one ReplaceAll transaction writes.
	BatchSize = 100

	// DefaultMaxAge is how long a snapshot is considered fresh.
	DefaultMaxAge = 30 * time.Minute
)

// Metadata describes the stored snapshot.
type Metadata struct {
	LastUpdated time.Time `json:"last_updated"`
	TotalOnus   int       `json:"total_onus"`
}

// Store persists ONU snapshots.
type Store interface {
	// ReplaceAll stores onus as the current snapshot and returns how many
	// distinct rows were written. Records without a serial number are
	// skipped. The swap is all or nothing.
	ReplaceAll(ctx context.Context, onus []onu.Onu) (int, error)

	// List returns the stored snapshot ordered by name.
	List(ctx context.Context) ([]onu.Onu, error)

	// GetBySN returns one record. Returns ErrOnuNotFound if absent.
	GetBySN(ctx context.Context, sn string) (*onu.Onu, error)

	// Metadata returns the snapshot metadata. Returns ErrNoSnapshot if
	// nothing has been stored.
	Metadata(ctx context.Context) (Metadata, error)

	// IsFresh reports whether a snapshot exists and is younger than maxAge.
	IsFresh(ctx context.Context, now time.Time, maxAge time.Duration) (bool, error)
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *database.DB
	now func() time.Time
}

// NewSQLiteStore creates a store over an open, migrated database.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

const onuColumns = `sn, unique_external_id, name, olt_id, olt_name, board, port, onu,
	onu_type_id, onu_type_name, zone_id, zone_name, address, odb_name, mode, wan_mode,
	ip_address, subnet_mask, default_gateway, dns1, dns2, username, catv,
	administrative_status, phone_number, service_ports, status, rx_power, tx_power,
	last_seen, distance, model`

const insertStaged = `INSERT INTO onus_staging (` + onuColumns + `, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ReplaceAll stages the snapshot in batches of BatchSize, each in its own
// transaction, then swaps it into onus and updates the metadata row in a
// single transaction. A failure before the swap, including a cancelled
// ctx, leaves the previous snapshot and its metadata untouched.
//
// Records without a real serial number are skipped. Records sharing a
// serial number collapse into the last one, and the returned count is the
// number of distinct rows stored.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, onus []onu.Onu) (int, error) {
	stamp := s.now().UTC().Format(time.RFC3339Nano)
	rows := distinctBySerial(onus)

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM onus_staging`)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clearing staged onus: %w", err)
	}

	for start := 0; start < len(rows); start += BatchSize {
		batch := rows[start:min(start+BatchSize, len(rows))]
		err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, insertStaged)
			if err != nil {
				return fmt.Errorf("preparing insert: %w", err)
			}
			defer stmt.Close()

			for i := range batch {
				args, err := onuArgs(&batch[i])
				if err != nil {
					return err
				}
				if _, err := stmt.ExecContext(ctx, append(args, stamp)...); err != nil {
					return fmt.Errorf("staging onu %s: %w", batch[i].SN, err)
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("writing batch at %d: %w", start, err)
		}
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM onus`); err != nil {
			return fmt.Errorf("clearing onus: %w", err)
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO onus (`+onuColumns+`, updated_at)
			SELECT `+onuColumns+`, updated_at FROM onus_staging`)
		if err != nil {
			return fmt.Errorf("publishing staged onus: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM onus_staging`); err != nil {
			return fmt.Errorf("clearing staged onus: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO onu_cache_metadata (id, last_updated, total_onus) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET last_updated = excluded.last_updated, total_onus = excluded.total_onus`,
			stamp, len(rows))
		if err != nil {
			return fmt.Errorf("updating metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(rows), nil
}

// distinctBySerial drops records without a real serial number and keeps
// the last record for each serial number, in first-seen order.
func distinctBySerial(onus []onu.Onu) []onu.Onu {
	index := make(map[string]int, len(onus))
	rows := make([]onu.Onu, 0, len(onus))
	for i := range onus {
		if !onus[i].HasSerial() {
			continue
		}
		if at, ok := index[onus[i].SN]; ok {
			rows[at] = onus[i]
			continue
		}
		index[onus[i].SN] = len(rows)
		rows = append(rows, onus[i])
	}
	return rows
}

// List returns the stored snapshot ordered by name, then serial number.
func (s *SQLiteStore) List(ctx context.Context) ([]onu.Onu, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+onuColumns+` FROM onus ORDER BY name, sn`)
	if err != nil {
		return nil, fmt.Errorf("querying onus: %w", err)
	}
	defer rows.Close()

	var onus []onu.Onu
	for rows.Next() {
		o, err := scanOnu(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning onu: %w", err)
		}
		onus = append(onus, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating onus: %w", err)
	}
	return onus, nil
}

// GetBySN returns the record with the given serial number.
func (s *SQLiteStore) GetBySN(ctx context.Context, sn string) (*onu.Onu, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+onuColumns+` FROM onus WHERE sn = ?`, sn)
	o, err := scanOnu(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOnuNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying onu %s: %w", sn, err)
	}
	return o, nil
}

// Metadata returns the snapshot metadata.
func (s *SQLiteStore) Metadata(ctx context.Context) (Metadata, error) {
	var lastUpdated string
	var m Metadata
	err := s.db.QueryRowContext(ctx,
		`SELECT last_updated, total_onus FROM onu_cache_metadata WHERE id = 1`,
	).Scan(&lastUpdated, &m.TotalOnus)
	if errors.Is(err, sql.ErrNoRows) {
		return Metadata{}, ErrNoSnapshot
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("querying metadata: %w", err)
	}

	m.LastUpdated, err = time.Parse(time.RFC3339Nano, lastUpdated)
	if err != nil {
		return Metadata{}, fmt.Errorf("parsing last_updated %q: %w", lastUpdated, err)
	}
	return m, nil
}

// IsFresh reports whether the snapshot is younger than maxAge. A maxAge
// of zero or less uses DefaultMaxAge.
func (s *SQLiteStore) IsFresh(ctx context.Context, now time.Time, maxAge time.Duration) (bool, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	m, err := s.Metadata(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return now.Sub(m.LastUpdated) < maxAge, nil
}

func onuArgs(o *onu.Onu) ([]any, error) {
	ports := o.ServicePorts
	if ports == nil {
		ports = []onu.ServicePort{}
	}
	portsJSON, err := json.Marshal(ports)
	if err != nil {
		return nil, fmt.Errorf("encoding service ports for %s: %w", o.SN, err)
	}

	var distance sql.NullInt64
	if o.Distance != nil {
		distance = sql.NullInt64{Int64: int64(*o.Distance), Valid: true}
	}

	return []any{
		o.SN, o.UniqueExternalID, o.Name,
		nullableString(o.OltID), nullableString(o.OltName), nullableString(o.Board),
		nullableString(o.Port), nullableString(o.OnuIndex),
		nullableString(o.OnuTypeID), nullableString(o.OnuTypeName),
		nullableString(o.ZoneID), nullableString(o.ZoneNameValue), nullableString(o.Address),
		nullableString(o.OdbName), nullableString(o.Mode), nullableString(o.WanMode),
		nullableString(o.IPAddress), nullableString(o.SubnetMask), nullableString(o.DefaultGateway),
		nullableString(o.DNS1), nullableString(o.DNS2), nullableString(o.Username), nullableString(o.CATV),
		nullableString(o.AdministrativeStatus), nullableString(o.PhoneNumber), string(portsJSON),
		defaultText(o.Status, "Unknown"), nullableFloat(o.RxPower), nullableFloat(o.TxPower),
		defaultText(o.LastSeen, onu.DefaultLastSeen), distance, nullableString(o.Model),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOnu(s rowScanner) (*onu.Onu, error) {
	var (
		o         onu.Onu
		strs      [23]sql.NullString
		portsJSON string
		rx, tx    sql.NullFloat64
		distance  sql.NullInt64
	)

	err := s.Scan(
		&o.SN, &o.UniqueExternalID, &o.Name,
		&strs[0], &strs[1], &strs[2], &strs[3], &strs[4], &strs[5], &strs[6],
		&strs[7], &strs[8], &strs[9], &strs[10], &strs[11], &strs[12],
		&strs[13], &strs[14], &strs[15], &strs[16], &strs[17], &strs[18], &strs[19],
		&strs[20], &strs[21], &portsJSON,
		&o.Status, &rx, &tx, &o.LastSeen, &distance, &strs[22],
	)
	if err != nil {
		return nil, err
	}

	targets := []**string{
		&o.OltID, &o.OltName, &o.Board, &o.Port, &o.OnuIndex, &o.OnuTypeID, &o.OnuTypeName,
		&o.ZoneID, &o.ZoneNameValue, &o.Address, &o.OdbName, &o.Mode, &o.WanMode,
		&o.IPAddress, &o.SubnetMask, &o.DefaultGateway, &o.DNS1, &o.DNS2, &o.Username, &o.CATV,
		&o.AdministrativeStatus, &o.PhoneNumber, &o.Model,
	}
	for i, target := range targets {
		if strs[i].Valid {
			v := strs[i].String
			*target = &v
		}
	}

	if err := json.Unmarshal([]byte(portsJSON), &o.ServicePorts); err != nil {
		return nil, fmt.Errorf("decoding service ports for %s: %w", o.SN, err)
	}
	if o.ServicePorts == nil {
		o.ServicePorts = []onu.ServicePort{}
	}
	if rx.Valid {
		v := rx.Float64
		o.RxPower = &v
	}
	if tx.Valid {
		v := tx.Float64
		o.TxPower = &v
	}
	if distance.Valid {
		v := int(distance.Int64)
		o.Distance = &v
	}

	return &o, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func defaultText(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
