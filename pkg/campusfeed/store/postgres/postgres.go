// Package postgres implements the campusfeed.DocStore contract on
// PostgreSQL. Documents live in a single table keyed by (collection,
// key) with the record body as jsonb, so attribute filters map onto
// jsonb operators.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campus-feed/pkg/campusfeed"
)

// DBTX allows the store to run on a pool or inside a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements campusfeed.DocStore using PostgreSQL.
type Store struct {
	db    DBTX
	table string
}

// Option configures a Store.
type Option func(*Store)

// WithTable overrides the physical table name (default: records).
func WithTable(table string) Option {
	return func(s *Store) { s.table = table }
}

// New creates a PostgreSQL document store.
func New(db DBTX, opts ...Option) *Store {
	s := &Store{db: db, table: "records"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWithPool creates a PostgreSQL document store on a connection pool.
func NewWithPool(pool *pgxpool.Pool, opts ...Option) *Store {
	return New(pool, opts...)
}

// Migrate creates the records table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            collection TEXT NOT NULL,
            key        TEXT NOT NULL,
            doc        JSONB NOT NULL,
            PRIMARY KEY (collection, key)
        )`, s.table))
	if err != nil {
		return fmt.Errorf("migrate %s: %w", s.table, err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, collection, key string, doc []byte) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (collection, key, doc)
        VALUES ($1, $2, $3)
        ON CONFLICT (collection, key) DO UPDATE SET doc = EXCLUDED.doc`, s.table)

	if _, err := s.db.Exec(ctx, query, collection, key, doc); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE collection = $1 AND key = $2`, s.table)

	var doc []byte
	err := s.db.QueryRow(ctx, query, collection, key).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", campusfeed.ErrKeyNotFound, collection, key)
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE collection = $1 AND key = $2`, s.table)

	tag, err := s.db.Exec(ctx, query, collection, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", campusfeed.ErrKeyNotFound, collection, key)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, collection string, conds ...campusfeed.Cond) ([][]byte, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT doc FROM %s WHERE collection = $1`, s.table)

	args := []interface{}{collection}
	for _, cond := range conds {
		fmt.Fprintf(&sb, " AND doc->>$%d = $%d", len(args)+1, len(args)+2)
		args = append(args, cond.Attr, cond.Value)
	}
	sb.WriteString(" ORDER BY key")

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	defer rows.Close()

	var result [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	return result, nil
}
