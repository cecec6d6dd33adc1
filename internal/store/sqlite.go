package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/pricelist-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS price_lists (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	source_name    TEXT NOT NULL DEFAULT '',
	origin         TEXT NOT NULL DEFAULT '',
	kind           TEXT NOT NULL DEFAULT '',
	effective_date TEXT,
	created_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS price_list_items (
	list_id         TEXT NOT NULL REFERENCES price_lists(id),
	position        INTEGER NOT NULL,
	code            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	color           TEXT NOT NULL DEFAULT '',
	size            TEXT NOT NULL DEFAULT '',
	unit_base_price REAL NOT NULL DEFAULT 0,
	suggested_price REAL NOT NULL DEFAULT 0,
	origin          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (list_id, position)
);

CREATE INDEX IF NOT EXISTS idx_price_lists_created_at ON price_lists(created_at);
CREATE INDEX IF NOT EXISTS idx_price_list_items_code ON price_list_items(list_id, code);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, list *model.PriceList) error {
	if err := validateForSave(list); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO price_lists (id, name, source_name, origin, kind, effective_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, source_name = excluded.source_name, origin = excluded.origin,
			kind = excluded.kind, effective_date = excluded.effective_date, created_at = excluded.created_at`,
		list.ID, list.Name, list.SourceName, list.Origin, string(list.Kind),
		dateValue(list.EffectiveDate), list.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert list %s", list.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_list_items WHERE list_id = ?`, list.ID); err != nil {
		return eris.Wrapf(err, "sqlite: clear items %s", list.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO price_list_items (list_id, position, code, description, color, size, unit_base_price, suggested_price, origin)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare item insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, it := range list.Items {
		if _, err := stmt.ExecContext(ctx, list.ID, i, it.Code, it.Description, it.Color, it.Size,
			it.UnitBasePrice, it.SuggestedPrice, it.Origin); err != nil {
			return eris.Wrapf(err, "sqlite: insert item %s", it.Code)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

const sqliteHeaderColumns = `id, name, source_name, origin, kind, effective_date, created_at`

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.PriceList, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteHeaderColumns+` FROM price_lists WHERE id = ?`, id)
	l, err := scanHeader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get list %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get list %s", id)
	}
	if l.Items, err = s.items(ctx, id); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *SQLiteStore) Load(ctx context.Context, previousLimit int) (*model.Snapshot, error) {
	query := `SELECT ` + sqliteHeaderColumns + ` FROM price_lists ORDER BY created_at DESC, rowid DESC`
	var args []any
	if previousLimit > 0 {
		query += ` LIMIT ?`
		args = append(args, previousLimit+1)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load lists")
	}
	var lists []model.PriceList
	for rows.Next() {
		l, err := scanHeader(rows)
		if err != nil {
			_ = rows.Close()
			return nil, eris.Wrap(err, "sqlite: scan list")
		}
		lists = append(lists, *l)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: load lists iterate")
	}

	for i := range lists {
		if lists[i].Items, err = s.items(ctx, lists[i].ID); err != nil {
			return nil, err
		}
	}
	return snapshotOf(lists, previousLimit), nil
}

func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]model.ListSummary, error) {
	query := `SELECT l.id, l.name, l.source_name, l.origin, l.kind, l.effective_date, l.created_at,
		(SELECT count(*) FROM price_list_items i WHERE i.list_id = l.id)
		FROM price_lists l WHERE 1=1`
	var args []any

	if filter.Name != "" {
		query += ` AND l.name = ?`
		args = append(args, filter.Name)
	}
	if filter.Kind != "" {
		query += ` AND l.kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY l.created_at DESC, l.rowid DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list summaries")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.ListSummary{}
	for rows.Next() {
		var sum model.ListSummary
		var kind string
		var date sql.NullString
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.SourceName, &sum.Origin, &kind, &date, &sum.CreatedAt, &sum.ItemCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan summary")
		}
		sum.Kind = model.ListKind(kind)
		sum.EffectiveDate = parseDateValue(date)
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list summaries iterate")
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_list_items WHERE list_id = ?`, id); err != nil {
		return eris.Wrapf(err, "sqlite: delete items %s", id)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM price_lists WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete list %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) items(ctx context.Context, listID string) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, description, color, size, unit_base_price, suggested_price, origin
		 FROM price_list_items WHERE list_id = ? ORDER BY position`, listID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query items %s", listID)
	}
	defer rows.Close() //nolint:errcheck

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.Code, &it.Description, &it.Color, &it.Size, &it.UnitBasePrice, &it.SuggestedPrice, &it.Origin); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan item")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: items iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanHeader(row scannable) (*model.PriceList, error) {
	var l model.PriceList
	var kind string
	var date sql.NullString
	if err := row.Scan(&l.ID, &l.Name, &l.SourceName, &l.Origin, &kind, &date, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Kind = model.ListKind(kind)
	l.EffectiveDate = parseDateValue(date)
	return &l, nil
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "list %s", id)
	}
	return nil
}

func dateValue(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseDateValue(s sql.NullString) *model.Date {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil
	}
	// tolerate drivers that hand back a full timestamp
	v := s.String
	if len(v) > len(model.DateLayout) {
		v = v[:len(model.DateLayout)]
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return nil
	}
	return &d
}
