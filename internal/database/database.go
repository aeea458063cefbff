package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// New opens the Postgres pool and checks it is reachable. With migrate set
// the embedded schema migrations run before the pool is handed out.
func New(ctx context.Context, connStr string, migrate bool) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if migrate {
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
