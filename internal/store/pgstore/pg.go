package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/geocoder89/bistro/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// All collections share one table; a collection is a value of the
// collection column and a document is a jsonb body keyed by its hex id.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	seq        BIGSERIAL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_body_idx ON documents USING GIN (body jsonb_path_ops);
`

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type DB struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dbURL string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (d *DB) Collection(name string) store.Collection {
	return &Collection{name: name, pool: d.pool}
}

// EnsureUnique adds a partial unique expression index over body->>field for
// one collection. Names come from code, never from requests.
func (d *DB) EnsureUnique(ctx context.Context, collection, field string) error {
	if !identRe.MatchString(collection) || !identRe.MatchString(field) {
		return fmt.Errorf("unique index %s.%s: invalid name", collection, field)
	}

	stmt := fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_%[1]s_%[2]s_uniq
		   ON documents ((body->>'%[2]s'))
		WHERE collection = '%[1]s' AND body->>'%[2]s' IS NOT NULL`,
		collection, field,
	)
	if _, err := d.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("unique index %s.%s: %w", collection, field, err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *DB) Close(context.Context) error {
	d.pool.Close()
	return nil
}

type Collection struct {
	name string
	pool *pgxpool.Pool
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Find(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	cond, args, err := c.where(filter)
	if err != nil {
		return nil, err
	}

	rows, err := c.pool.Query(ctx,
		`SELECT id, body::text FROM documents WHERE `+cond+` ORDER BY seq`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []store.Document{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}

		doc, err := decode(id, body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (c *Collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	cond, args, err := c.where(filter)
	if err != nil {
		return nil, err
	}

	var id, body string
	err = c.pool.QueryRow(ctx,
		`SELECT id, body::text FROM documents WHERE `+cond+` ORDER BY seq LIMIT 1`, args...,
	).Scan(&id, &body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return decode(id, body)
}

func (c *Collection) InsertOne(ctx context.Context, doc store.Document) (store.InsertOneResult, error) {
	id, ok := store.Normalize(doc[store.IDField]).(string)
	if !ok || id == "" {
		id = store.NewID().Hex()
	}

	body, err := encode(doc)
	if err != nil {
		return store.InsertOneResult{}, err
	}

	_, err = c.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`,
		c.name, id, body,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return store.InsertOneResult{}, fmt.Errorf("%w: %w", store.ErrDuplicate, err)
		}
		return store.InsertOneResult{}, err
	}

	return store.InsertOneResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	cond, args, err := c.where(filter)
	if err != nil {
		return store.UpdateResult{}, err
	}

	patch, err := encode(set)
	if err != nil {
		return store.UpdateResult{}, err
	}
	args = append(args, patch)

	// old body comes from the CTE, new body from the updated row
	query := fmt.Sprintf(`
		WITH target AS (
			SELECT collection, id, body FROM documents
			WHERE %s
			ORDER BY seq
			LIMIT 1
			FOR UPDATE
		)
		UPDATE documents d
		SET body = d.body || $%d::jsonb
		FROM target t
		WHERE d.collection = t.collection AND d.id = t.id
		RETURNING t.body IS DISTINCT FROM d.body`, cond, len(args))

	res := store.UpdateResult{Acknowledged: true}

	var modified bool
	err = c.pool.QueryRow(ctx, query, args...).Scan(&modified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return res, nil
		}
		return store.UpdateResult{}, err
	}

	res.MatchedCount = 1
	if modified {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	cond, args, err := c.where(filter)
	if err != nil {
		return store.DeleteResult{}, err
	}

	tag, err := c.pool.Exec(ctx, `
		DELETE FROM documents
		WHERE (collection, id) IN (
			SELECT collection, id FROM documents
			WHERE `+cond+`
			ORDER BY seq
			LIMIT 1
		)`, args...)
	if err != nil {
		return store.DeleteResult{}, err
	}

	return store.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

// where translates an equality filter into SQL. $1 is always the
// collection name. Non-id fields become one jsonb containment test; nil
// values require the key to be missing or null.
func (c *Collection) where(filter store.Filter) (string, []any, error) {
	conds := []string{"collection = $1"}
	args := []any{c.name}

	contains := store.Document{}

	for field, want := range filter {
		switch {
		case field == store.IDField:
			id, ok := store.Normalize(want).(string)
			if !ok {
				conds = append(conds, "FALSE")
				continue
			}
			args = append(args, id)
			conds = append(conds, fmt.Sprintf("id = $%d", len(args)))

		case want == nil:
			args = append(args, field)
			conds = append(conds, fmt.Sprintf("body->>$%d IS NULL", len(args)))

		default:
			contains[field] = want
		}
	}

	if len(contains) > 0 {
		raw, err := json.Marshal(contains)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter: %w", err)
		}
		args = append(args, string(raw))
		conds = append(conds, fmt.Sprintf("body @> $%d::jsonb", len(args)))
	}

	return strings.Join(conds, " AND "), args, nil
}

// encode drops _id, which lives in its own column.
func encode(doc store.Document) (string, error) {
	body := make(store.Document, len(doc))
	for k, v := range doc {
		if k != store.IDField {
			body[k] = v
		}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func decode(id, body string) (store.Document, error) {
	doc := store.Document{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc[store.IDField] = id
	return doc, nil
}
