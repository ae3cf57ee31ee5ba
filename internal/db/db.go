package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Init opens the Postgres pool through the pgx database/sql driver and checks it answers
func Init(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db init: empty dsn")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return sqlDB, nil
}

var migrations = []string{
	`CREATE SCHEMA IF NOT EXISTS catalog`,
	`CREATE TABLE IF NOT EXISTS catalog.products (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		price             DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		primary_image_url TEXT NOT NULL DEFAULT '',
		images            TEXT[],
		category          TEXT NOT NULL DEFAULT '',
		brand             TEXT NOT NULL DEFAULT '',
		sku               TEXT NOT NULL UNIQUE,
		stock_count       INTEGER NOT NULL DEFAULT 0,
		tags              TEXT[],
		rating            DOUBLE PRECISION CHECK (rating BETWEEN 0 AND 5),
		review_count      INTEGER NOT NULL DEFAULT 0,
		popularity        DOUBLE PRECISION,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE catalog.products ADD COLUMN IF NOT EXISTS brand TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE catalog.products ADD COLUMN IF NOT EXISTS popularity DOUBLE PRECISION`,
	`CREATE TABLE IF NOT EXISTS catalog.browse_prefs (
		namespace  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (namespace, key)
	)`,
}

// Migrate creates the catalog schema and tables when they are missing
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
