package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/partyload/internal/config"
	"github.com/JonMunkholm/partyload/internal/core"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens and pings a connection pool sized from cfg. NUMERIC values
// are mapped to shopspring decimals on every connection.
func NewPool(ctx context.Context, cfg config.StoreConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	return pool, nil
}

// Postgres inserts records with one parameterized statement per call.
type Postgres struct {
	db      core.DBTX
	closeFn func()
}

// NewPostgres wraps db. closeFn, if non-nil, runs on Close.
func NewPostgres(db core.DBTX, closeFn func()) *Postgres {
	return &Postgres{db: db, closeFn: closeFn}
}

// Insert executes a single INSERT outside any transaction.
func (p *Postgres) Insert(ctx context.Context, table string, rec *core.PartyRecord) error {
	tag, err := p.db.Exec(ctx, insertStatement(table), rec.Values()...)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, describePgError(err))
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert into %s: %d rows affected, want 1", table, tag.RowsAffected())
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

// insertStatement builds the parameterized INSERT for core.RecordColumns.
func insertStatement(table string) string {
	cols := make([]string, len(core.RecordColumns))
	params := make([]string, len(core.RecordColumns))
	for i, col := range core.RecordColumns {
		cols[i] = quoteIdentifier(col)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(table),
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
	)
}

// describePgError names the violated constraint or column, when the server
// reports one.
func describePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.ConstraintName != "":
		return fmt.Errorf("%w [constraint %s]", err, pgErr.ConstraintName)
	case pgErr.ColumnName != "":
		return fmt.Errorf("%w [column %s]", err, pgErr.ColumnName)
	}
	return err
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
