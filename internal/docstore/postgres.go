package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"
)

// sqlExecutor is satisfied by *sql.DB and *sql.Tx.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// PostgresStore keeps every collection in one JSONB table (see database/schema.sql).
// Transactions run SERIALIZABLE, lock what they read, and are retried on
// serialization failures and deadlocks.
type PostgresStore struct {
	db   *sql.DB
	opts Options
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB, opts ...Option) *PostgresStore {
	return &PostgresStore{db: db, opts: buildOptions(opts)}
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	return pgGet(ctx, s.db, collection, id, false)
}

func (s *PostgresStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	return pgFind(ctx, s.db, collection, filters, false)
}

func (s *PostgresStore) Count(ctx context.Context, collection string, filters ...Filter) (int64, error) {
	obj, err := filterJSON(filters)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = $1 AND data @> $2::jsonb`,
		collection, obj).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, doc interface{}) error {
	return pgSet(ctx, s.db, collection, id, doc)
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return pgUpdate(ctx, s.db, collection, id, fields)
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	return pgDelete(ctx, s.db, collection, id)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RunTransaction runs fn in a SERIALIZABLE transaction, retrying on conflict.
func (s *PostgresStore) RunTransaction(ctx context.Context, fn TxFunc) error {
	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		lastErr = s.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		s.opts.retried(attempt)
	}
	return fmt.Errorf("%w: %w", ErrTxConflict, lastErr)
}

func (s *PostgresStore) runOnce(ctx context.Context, fn TxFunc) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback() // no-op after Commit

	if err := fn(ctx, &pgTx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isRetryable reports serialization failures (40001) and deadlocks (40P01).
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Get(ctx context.Context, collection, id string) (*Document, error) {
	return pgGet(ctx, t.tx, collection, id, true)
}

func (t *pgTx) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	return pgFind(ctx, t.tx, collection, filters, true)
}

func (t *pgTx) Set(ctx context.Context, collection, id string, doc interface{}) error {
	return pgSet(ctx, t.tx, collection, id, doc)
}

func (t *pgTx) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return pgUpdate(ctx, t.tx, collection, id, fields)
}

func (t *pgTx) Delete(ctx context.Context, collection, id string) error {
	return pgDelete(ctx, t.tx, collection, id)
}

func filterJSON(filters []Filter) (string, error) {
	obj, err := filterObject(filters)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func pgGet(ctx context.Context, db sqlExecutor, collection, id string, lock bool) (*Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	var data []byte
	err := db.QueryRowContext(ctx, query, collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return &Document{ID: id, Data: data}, nil
}

func pgFind(ctx context.Context, db sqlExecutor, collection string, filters []Filter, lock bool) ([]Document, error) {
	obj, err := filterJSON(filters)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, data FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY length(id), id`
	if lock {
		query += ` FOR UPDATE`
	}
	rows, err := db.QueryContext(ctx, query, collection, obj)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var data []byte
		if err := rows.Scan(&d.ID, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		d.Data = data
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return docs, nil
}

func pgSet(ctx context.Context, db sqlExecutor, collection, id string, doc interface{}) error {
	data, err := encodeObject(doc)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, string(data))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// buildUpdateExpr renders fields as a JSONB expression over the current data.
// Plain values are merged with ||, increments become jsonb_set calls.
// Field names are validated identifiers, so inlining them is safe.
func buildUpdateExpr(fields map[string]interface{}, firstArg int) (string, []interface{}, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if err := validateField(name); err != nil {
			return "", nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	plain := map[string]interface{}{}
	expr := "data"
	var args []interface{}
	arg := firstArg
	for _, name := range names {
		inc, ok := fields[name].(Inc)
		if !ok {
			plain[name] = fields[name]
			continue
		}
		expr = fmt.Sprintf(
			"jsonb_set(%s, '{%s}', to_jsonb(COALESCE((data->>'%s')::numeric, 0) + $%d::numeric))",
			expr, name, name, arg)
		args = append(args, inc.By)
		arg++
	}
	if len(plain) > 0 {
		data, err := json.Marshal(plain)
		if err != nil {
			return "", nil, fmt.Errorf("encode update: %w", err)
		}
		expr = fmt.Sprintf("(%s || $%d::jsonb)", expr, arg)
		args = append(args, string(data))
	}
	return expr, args, nil
}

func pgUpdate(ctx context.Context, db sqlExecutor, collection, id string, fields map[string]interface{}) error {
	expr, args, err := buildUpdateExpr(fields, 3)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		`UPDATE documents SET data = %s, updated_at = NOW() WHERE collection = $1 AND id = $2`, expr)
	res, err := db.ExecContext(ctx, query, append([]interface{}{collection, id}, args...)...)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return requireAffected(res)
}

func pgDelete(ctx context.Context, db sqlExecutor, collection, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
