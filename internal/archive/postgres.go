package archive

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores ledger entries in PostgreSQL.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres builds a Postgres-backed archiver.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the ledger_entries table when it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS ledger_entries (
        id TEXT PRIMARY KEY,
        kind TEXT NOT NULL,
        from_account TEXT NOT NULL,
        to_account TEXT NOT NULL,
        amount_paise BIGINT NOT NULL,
        note TEXT NOT NULL DEFAULT '',
        category TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL
    )`)
	return err
}

// Record inserts the entry, ignoring duplicates on retry.
func (p *Postgres) Record(ctx context.Context, entry Entry) error {
	_, err := p.db.Exec(ctx, `INSERT INTO ledger_entries
        (id, kind, from_account, to_account, amount_paise, note, category, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO NOTHING`,
		entry.ID, entry.Kind, entry.From, entry.To, int64(entry.Amount),
		entry.Note, entry.Category, entry.Timestamp.UTC())
	return err
}
