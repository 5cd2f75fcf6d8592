package db

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/storefront/internal/pkg/instrument"
	"github.com/shandysiswandi/storefront/internal/pkg/pgstore"
)

type DB struct {
	pgstore.Repo
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{Repo: pgstore.NewRepo(conn, ins, "payment", "payment_checkouts")}
}
