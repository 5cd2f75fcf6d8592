// Package pgstore holds the pieces every Postgres repository shares: error
// translation into goerror sentinels and span bookkeeping.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
)

// SQLSTATE codes translated by MapError.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// MapError translates driver errors:
//   - no rows → goerror.ErrNotFound
//   - 23505 unique_violation → goerror.ErrConflict (constraint name kept in the chain)
//   - 23503 foreign_key_violation → goerror.ErrNotFound
//
// Anything else is returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", goerror.ErrConflict, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", goerror.ErrNotFound, pgErr.ConstraintName)
	default:
		return err
	}
}

// Repo is embedded by module repositories.
type Repo struct {
	Conn   *pgxpool.Pool
	tracer trace.Tracer
	table  string
}

// NewRepo returns a Repo tracing under "<module>.outbound.db".
func NewRepo(conn *pgxpool.Pool, ins instrument.Instrumentation, module, table string) Repo {
	return Repo{Conn: conn, tracer: ins.Tracer(module + ".outbound.db"), table: table}
}

// Start opens a client span for one repository call.
func (r Repo) Start(ctx context.Context, op string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.sql.table", r.table),
			attribute.String("db.operation", op),
		),
	)
}

// End closes span. Not-found and conflict results are expected outcomes and
// do not mark the span as failed.
func End(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
