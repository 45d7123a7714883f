// Package database centralises sqlx connection helpers.  The driver is
// go-sql-driver/mysql.
//
// Public entry points:
//
//	Open(cfg)                            – pool from config.Database.
//	OpenWithOptions(dsn, maxOpen, maxIdle) – fine-grained control.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/lincms/internal/config"
)

// DSN merges the configured password into dsn and forces the options the
// repositories rely on.  DATETIME columns scan into time.Time in local time,
// and RowsAffected counts matched rows so an UPDATE that writes the current
// values still reports its row.
func DSN(dsn, password string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	if password != "" {
		mc.Passwd = password
	}
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.ClientFoundRows = true
	return mc.FormatDSN(), nil
}

// Open returns a pool configured from cfg.
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	dsn, err := DSN(cfg.DSN, cfg.Password)
	if err != nil {
		return nil, err
	}
	return OpenWithOptions(ctx, dsn, cfg.MaxOpen, cfg.MaxIdle)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.
func OpenWithOptions(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
