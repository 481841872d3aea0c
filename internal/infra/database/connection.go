package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// NewDBConnection opens the Postgres pool and verifies it with a ping.
func NewDBConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

const leadsSchema = `
	CREATE TABLE IF NOT EXISTS leads (
		id           TEXT PRIMARY KEY,
		name         TEXT,
		phone        TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		status       TEXT NOT NULL,
		vapi_call_id TEXT,
		last_event   JSONB
	);
	CREATE INDEX IF NOT EXISTS leads_vapi_call_id_idx ON leads (vapi_call_id);
`

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, leadsSchema)
	return err
}
