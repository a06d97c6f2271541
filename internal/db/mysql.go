package db

import (
	"context"
	"errors"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

var ErrEmptyDSN = errors.New("empty MySQL DSN")

type MySQLOpts struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration // default 5s
}

// NewMySQLConnection opens a *sqlx.DB and pings it within opts.PingTimeout.
// The outbox backend writes a single row per run, so the pool stays small.
func NewMySQLConnection(ctx context.Context, dsn string, opts MySQLOpts) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 2
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 1
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
