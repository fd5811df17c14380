package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Emiliocodings/ServiceUsers/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"

	defaultPingTimeout    = 5 * time.Second
	defaultConnectTimeout = 5 * time.Second
)

// Open connects to the users database and verifies it is reachable.
// The returned handle is safe for concurrent use and must be closed by the caller.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case DriverPQ, "":
		db, err = sqlx.Open(DriverPQ, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	case DriverPGX:
		connCfg, err := pgx.ParseConfig(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}
		connCfg.ConnectTimeout = defaultConnectTimeout
		db = sqlx.NewDb(stdlib.OpenDB(*connCfg), DriverPGX)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
