package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/pricelist-cli/internal/db"
	"github.com/sells-group/pricelist-cli/internal/model"
)

// PostgresStore implements Store on a pgx pool. Each save writes the header
// and its items in one transaction.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to connString and returns a PostgresStore.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS price_lists (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	source_name    TEXT NOT NULL DEFAULT '',
	origin         TEXT NOT NULL DEFAULT '',
	kind           TEXT NOT NULL DEFAULT '',
	effective_date DATE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS price_list_items (
	list_id         TEXT NOT NULL REFERENCES price_lists(id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	code            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	color           TEXT NOT NULL DEFAULT '',
	size            TEXT NOT NULL DEFAULT '',
	unit_base_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	suggested_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	origin          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (list_id, position)
);

CREATE INDEX IF NOT EXISTS idx_price_lists_created_at ON price_lists(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_price_list_items_code ON price_list_items(list_id, code);
`

var (
	headerColumns = []string{"id", "name", "source_name", "origin", "kind", "effective_date", "created_at"}
	itemColumns   = []string{"list_id", "position", "code", "description", "color", "size", "unit_base_price", "suggested_price", "origin"}
)

const (
	pgHeaderSelect = `SELECT id, name, source_name, origin, kind, effective_date, created_at FROM price_lists`
	pgItemsSelect  = `SELECT code, description, color, size, unit_base_price, suggested_price, origin FROM price_list_items WHERE list_id = $1 ORDER BY position`
)

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, list *model.PriceList) error {
	if err := validateForSave(list); err != nil {
		return err
	}

	upsert, err := db.BuildUpsert(db.UpsertConfig{
		Table:        "price_lists",
		Columns:      headerColumns,
		ConflictKeys: []string{"id"},
	})
	if err != nil {
		return eris.Wrap(err, "postgres: build upsert")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var effective *time.Time
	if list.EffectiveDate != nil {
		t := list.EffectiveDate.Time
		effective = &t
	}
	if _, err := tx.Exec(ctx, upsert,
		list.ID, list.Name, list.SourceName, list.Origin, string(list.Kind), effective, list.CreatedAt.UTC(),
	); err != nil {
		return eris.Wrapf(err, "postgres: upsert list %s", list.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM price_list_items WHERE list_id = $1`, list.ID); err != nil {
		return eris.Wrapf(err, "postgres: clear items %s", list.ID)
	}

	rows := make([][]any, len(list.Items))
	for i, it := range list.Items {
		rows[i] = []any{list.ID, i, it.Code, it.Description, it.Color, it.Size, it.UnitBasePrice, it.SuggestedPrice, it.Origin}
	}
	if _, err := db.CopyFrom(ctx, tx, "price_list_items", itemColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: copy items %s", list.ID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.PriceList, error) {
	row := s.pool.QueryRow(ctx, pgHeaderSelect+` WHERE id = $1`, id)
	l, err := scanPgHeader(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get list %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get list %s", id)
	}
	if l.Items, err = s.items(ctx, id); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *PostgresStore) Load(ctx context.Context, previousLimit int) (*model.Snapshot, error) {
	query := pgHeaderSelect + ` ORDER BY created_at DESC`
	var args []any
	if previousLimit > 0 {
		query += ` LIMIT $1`
		args = append(args, previousLimit+1)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load lists")
	}
	var lists []model.PriceList
	for rows.Next() {
		l, err := scanPgHeader(rows)
		if err != nil {
			rows.Close()
			return nil, eris.Wrap(err, "postgres: scan list")
		}
		lists = append(lists, *l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: load lists iterate")
	}

	for i := range lists {
		if lists[i].Items, err = s.items(ctx, lists[i].ID); err != nil {
			return nil, err
		}
	}
	return snapshotOf(lists, previousLimit), nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]model.ListSummary, error) {
	query := `SELECT l.id, l.name, l.source_name, l.origin, l.kind, l.effective_date, l.created_at,
		(SELECT count(*) FROM price_list_items i WHERE i.list_id = l.id)
		FROM price_lists l WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Name != "" {
		query += fmt.Sprintf(` AND l.name = $%d`, argIdx)
		args = append(args, filter.Name)
		argIdx++
	}
	if filter.Kind != "" {
		query += fmt.Sprintf(` AND l.kind = $%d`, argIdx)
		args = append(args, string(filter.Kind))
		argIdx++
	}
	query += ` ORDER BY l.created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list summaries")
	}
	defer rows.Close()

	out := []model.ListSummary{}
	for rows.Next() {
		var sum model.ListSummary
		var kind string
		var effective *time.Time
		var count int64
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.SourceName, &sum.Origin, &kind, &effective, &sum.CreatedAt, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan summary")
		}
		sum.Kind = model.ListKind(kind)
		sum.EffectiveDate = datePtr(effective)
		sum.ItemCount = int(count)
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list summaries iterate")
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM price_lists WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete list %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: delete list %s", id)
	}
	return nil
}

func (s *PostgresStore) items(ctx context.Context, listID string) ([]model.Item, error) {
	rows, err := s.pool.Query(ctx, pgItemsSelect, listID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query items %s", listID)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.Code, &it.Description, &it.Color, &it.Size, &it.UnitBasePrice, &it.SuggestedPrice, &it.Origin); err != nil {
			return nil, eris.Wrap(err, "postgres: scan item")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "postgres: items iterate")
}

func scanPgHeader(row pgx.Row) (*model.PriceList, error) {
	var l model.PriceList
	var kind string
	var effective *time.Time
	if err := row.Scan(&l.ID, &l.Name, &l.SourceName, &l.Origin, &kind, &effective, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Kind = model.ListKind(kind)
	l.EffectiveDate = datePtr(effective)
	return &l, nil
}

func datePtr(t *time.Time) *model.Date {
	if t == nil || t.IsZero() {
		return nil
	}
	d := model.NewDate(*t)
	return &d
}
