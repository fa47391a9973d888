package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kola-hr/kola/internal/platform/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dashboard_audit (
	id          BIGSERIAL PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	actor_id    TEXT NOT NULL DEFAULT '',
	actor_email TEXT NOT NULL DEFAULT '',
	company_id  TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	entity      TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	meta        JSONB NOT NULL DEFAULT '{}'::jsonb
)`

const indexSQL = `CREATE INDEX IF NOT EXISTS dashboard_audit_company_time_idx ON dashboard_audit (company_id, occurred_at DESC)`

const insertSQL = `INSERT INTO dashboard_audit (occurred_at, actor_id, actor_email, company_id, action, entity, entity_id, meta)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const windowSQL = `SELECT occurred_at, actor_id, actor_email, company_id, action, entity, entity_id, meta
FROM dashboard_audit
WHERE company_id = $1
  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
  AND ($3::timestamptz IS NULL OR occurred_at < $3)
  AND ($4::text = '' OR actor_email ILIKE '%' || $4 || '%')
  AND ($5::text = '' OR action = $5)
ORDER BY occurred_at DESC, id DESC
OFFSET $6 LIMIT $7`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// EnsureSchema creates the audit table when missing.
func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("audit: create table: %w", err)
		}
		if _, err := tx.Exec(ctx, indexSQL); err != nil {
			return fmt.Errorf("audit: create index: %w", err)
		}
		return nil
	})
}

// Insert persists entry.
func (r *PGRepository) Insert(ctx context.Context, entry Entry) error {
	meta := entry.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertSQL, entry.At, entry.ActorID, entry.ActorEmail, entry.CompanyID, entry.Action, entry.Entity, entry.EntityID, metaJSON)
	return err
}

// Window returns entries matching params, newest first.
func (r *PGRepository) Window(ctx context.Context, params WindowParams) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, windowSQL,
		params.CompanyID, nullableTime(params.From), nullableTime(params.To),
		params.Actor, params.Action, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e    Entry
			meta []byte
		)
		if err := row.Scan(&e.At, &e.ActorID, &e.ActorEmail, &e.CompanyID, &e.Action, &e.Entity, &e.EntityID, &meta); err != nil {
			return Entry{}, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return Entry{}, err
			}
		}
		return e, nil
	})
}

func nullableTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

var _ Repository = (*PGRepository)(nil)
