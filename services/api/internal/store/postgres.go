package store

import (
	"context"
	"errors"
	"strings"

	"github.com/example/video-platform/internal/platform/paging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists everything in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by Postgres.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// mapErr turns driver errors into the package sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrConflict
		case "23503": // foreign_key_violation
			return ErrNotFound
		case "23514": // check_violation
			if strings.Contains(pgErr.ConstraintName, "subscriptions") {
				return ErrSelfSubscription
			}
		}
	}
	return err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// pgQuery wires a keyset page query and an optional count query that share
// one predicate. head holds the values of placeholders the select list binds
// ahead of the predicate.
type pgQuery[T any] struct {
	pool      *pgxpool.Pool
	selectQ   string
	countQ    string
	where     paging.Where
	head      []any
	primary   string
	tie       string
	keys      paging.Keys[T]
	scan      func(pgx.CollectableRow) (T, error)
	withTotal bool
}

func (q pgQuery[T]) run(ctx context.Context, req paging.Request) (paging.Page[T], error) {
	pq := paging.Query[T]{
		Keys: q.keys,
		Fetch: func(ctx context.Context, after *paging.Cursor, limit int) ([]T, error) {
			clause, args := q.where.Shift(len(q.head)).Keyset(q.primary, q.tie, after, limit)
			rows, err := q.pool.Query(ctx, q.selectQ+clause, append(append([]any{}, q.head...), args...)...)
			if err != nil {
				return nil, err
			}
			return pgx.CollectRows(rows, q.scan)
		},
	}
	if q.withTotal {
		pq.Count = func(ctx context.Context) (int64, error) {
			clause, args := q.where.SQL()
			var n int64
			err := q.pool.QueryRow(ctx, q.countQ+clause, args...).Scan(&n)
			return n, err
		}
	}
	return paging.Execute(ctx, req, pq)
}

const userColumns = `u.id, u.auth_id, u.name, u.image_url, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.AuthID, &u.Name, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (s *PostgresStore) UpsertUser(ctx context.Context, u User) (User, error) {
	const q = `INSERT INTO users AS u (auth_id, name, image_url)
	           VALUES ($1, $2, $3)
	           ON CONFLICT (auth_id) DO UPDATE
	             SET name = EXCLUDED.name, image_url = EXCLUDED.image_url, updated_at = now()
	           RETURNING ` + userColumns
	return scanUser(s.pool.QueryRow(ctx, q, u.AuthID, u.Name, u.ImageURL))
}

func (s *PostgresStore) DeleteUserByAuthID(ctx context.Context, authID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE auth_id = $1`, authID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetUserByAuthID(ctx context.Context, authID string) (User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.auth_id = $1`
	return scanUser(s.pool.QueryRow(ctx, q, authID))
}

func (s *PostgresStore) GetUserProfile(ctx context.Context, userID, viewerID string) (UserProfile, error) {
	q := `SELECT ` + userColumns + `,
	        (SELECT count(*) FROM subscriptions s WHERE s.creator_id = u.id),
	        (SELECT count(*) FROM videos v WHERE v.user_id = u.id
	           AND (v.visibility = 'public' OR v.user_id = NULLIF($2, '')::uuid)),
	        EXISTS (SELECT 1 FROM subscriptions s
	                 WHERE s.creator_id = u.id AND s.viewer_id = NULLIF($2, '')::uuid)
	      FROM users u WHERE u.id = $1`
	var p UserProfile
	err := s.pool.QueryRow(ctx, q, userID, viewerID).Scan(
		&p.ID, &p.AuthID, &p.Name, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		&p.SubscriberCount, &p.VideoCount, &p.ViewerSubscribed)
	return p, mapErr(err)
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, COALESCE(description, ''), created_at, updated_at
	                                FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Category, error) {
		var c Category
		err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c Category) (Category, error) {
	const q = `INSERT INTO categories (name, description) VALUES ($1, $2)
	           RETURNING id, name, COALESCE(description, ''), created_at, updated_at`
	var out Category
	err := s.pool.QueryRow(ctx, q, c.Name, nullIfEmpty(c.Description)).
		Scan(&out.ID, &out.Name, &out.Description, &out.CreatedAt, &out.UpdatedAt)
	return out, mapErr(err)
}
