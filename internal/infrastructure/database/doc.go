// Package database provides SQLite connectivity for Nosteq Core.
//
// This package manages:
//   - The connection, opened with WAL mode and a busy timeout
//   - Schema migrations embedded by the migrations package
//   - Transaction helpers used by the inventory and technician stores
//
// All queries in the stores use parameterised statements. The database file
// is created with 0600 permissions.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration Strategy:
//
// Migrations are additive. New columns must be nullable or carry a default,
// and each .up.sql has a matching .down.sql.
package database
