// Package migration applies the embedded SQL schema to postgres.
package migration

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

//go:embed sql/*.sql
var files embed.FS

// lockKey serializes concurrent migrators on the same database.
const lockKey int64 = 0x73746f7265

// Migration is one versioned schema change.
type Migration struct {
	Version string
	SQL     string
}

// Load returns the embedded migrations ordered by version.
func Load() ([]Migration, error) {
	entries, err := fs.Glob(files, "sql/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(entries)

	out := make([]Migration, 0, len(entries))
	for _, name := range entries {
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, Migration{
			Version: strings.TrimSuffix(path.Base(name), ".sql"),
			SQL:     string(body),
		})
	}

	return out, nil
}

// Up applies every migration not yet recorded in schema_migrations and
// returns the versions it applied. Each migration runs in its own transaction.
func Up(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	migrations, err := Load()
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		if _, err := conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, lockKey); err != nil {
			slog.WarnContext(ctx, "failed to release migration lock", "error", err)
		}
	}()

	if _, err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan schema_migrations: %w", err)
	}

	pending := lo.Reject(migrations, func(m Migration, _ int) bool {
		return lo.Contains(applied, m.Version)
	})

	done := make([]string, 0, len(pending))
	for _, m := range pending {
		err := pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version)
			return err
		})
		if err != nil {
			return done, fmt.Errorf("apply migration %s: %w", m.Version, err)
		}

		slog.InfoContext(ctx, "migration applied", "version", m.Version)
		done = append(done, m.Version)
	}

	return done, nil
}
