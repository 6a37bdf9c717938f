package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

const (
	defaultTimeout  = 5 * time.Second
	maxConnLifetime = 30 * time.Minute

	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config captures the settings required to open the relational store.
type Config struct {
	DSN      string
	MaxConns int
	Timeout  time.Duration
}

// querier is the subset of database/sql used by the repositories.
// *sql.DB and *sql.Tx both satisfy it.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Connect opens a pooled connection through the pgx driver and verifies it
// with a ping. The caller owns the returned handle and must Close it.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns)
	}
	db.SetConnMaxLifetime(maxConnLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// persistenceError tags a storage failure with domain.ErrPersistence while
// keeping the driver error in the chain.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
