package database

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// Open connects to Postgres using DATABASE_URL and verifies the connection.
func Open() (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent, so it
// runs on every start.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique violation. When
// constraint names are given, the violated constraint must match one of them.
func IsUniqueViolation(err error, constraints ...string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pqErr.Constraint == c {
			return true
		}
	}
	return false
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key
// violation, i.e. a referenced row is missing or still referenced.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
