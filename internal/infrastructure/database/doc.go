// Package database provides SQL connectivity for Fieldtask Core.
//
// Two drivers are supported behind one wrapper:
//   - "sqlite3" (github.com/mattn/go-sqlite3): embedded file database with
//     WAL mode and a busy timeout, single writer connection
//   - "pgx" (github.com/jackc/pgx/v5/stdlib): PostgreSQL via database/sql
//
// Queries are written with ? placeholders; DB.Rebind translates them to
// $n for PostgreSQL. Migrations are embedded per dialect (sqlite/,
// postgres/) and applied in version order, one transaction each.
//
// Usage:
//
//	db, err := database.Open(database.Config{Driver: "sqlite3", Path: "./data/fieldtask.db"})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
