package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/geocoder89/bistro/internal/store"
	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 5

type Config struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces the collection hashes, "bistro:" by default.
	KeyPrefix string
}

// DB keeps each collection in one hash: field = hex id, value = JSON body.
type DB struct {
	rdb    *redis.Client
	prefix string
}

func Open(ctx context.Context, cfg Config) (*DB, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "bistro:"
	}

	return &DB{rdb: rdb, prefix: prefix}, nil
}

func (d *DB) Collection(name string) store.Collection {
	return &Collection{name: name, key: d.prefix + name, rdb: d.rdb}
}

func (d *DB) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}

func (d *DB) Close(context.Context) error {
	return d.rdb.Close()
}

type Collection struct {
	name string
	key  string
	rdb  *redis.Client
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Find(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	all, err := c.load(ctx, c.rdb)
	if err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(all))
	for _, d := range all {
		if store.Matches(d, filter) {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (c *Collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	all, err := c.load(ctx, c.rdb)
	if err != nil {
		return nil, err
	}

	for _, d := range all {
		if store.Matches(d, filter) {
			return d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (c *Collection) InsertOne(ctx context.Context, doc store.Document) (store.InsertOneResult, error) {
	id, ok := store.Normalize(doc[store.IDField]).(string)
	if !ok || id == "" {
		id = store.NewID().Hex()
	}

	raw, err := encode(doc)
	if err != nil {
		return store.InsertOneResult{}, err
	}

	created, err := c.rdb.HSetNX(ctx, c.key, id, raw).Result()
	if err != nil {
		return store.InsertOneResult{}, err
	}
	if !created {
		return store.InsertOneResult{}, fmt.Errorf("duplicate id %s in %s", id, c.name)
	}

	return store.InsertOneResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	var res store.UpdateResult

	err := c.withTx(ctx, func(tx *redis.Tx) error {
		res = store.UpdateResult{Acknowledged: true}

		all, err := c.load(ctx, tx)
		if err != nil {
			return err
		}

		target := first(all, filter)
		if target == nil {
			return nil
		}
		res.MatchedCount = 1

		before := store.Normalize(map[string]any(target))
		for k, v := range set {
			if k != store.IDField {
				target[k] = v
			}
		}
		after := store.Normalize(map[string]any(target))

		if reflect.DeepEqual(before, after) {
			return nil
		}
		res.ModifiedCount = 1

		raw, err := encode(target)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, c.key, target[store.IDField], raw)
			return nil
		})
		return err
	})

	return res, err
}

func (c *Collection) DeleteOne(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	// an _id lookup does not need to scan the hash
	if want, ok := filter[store.IDField]; ok && len(filter) == 1 {
		id, _ := store.Normalize(want).(string)
		n, err := c.rdb.HDel(ctx, c.key, id).Result()
		if err != nil {
			return store.DeleteResult{}, err
		}
		return store.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
	}

	var res store.DeleteResult

	err := c.withTx(ctx, func(tx *redis.Tx) error {
		res = store.DeleteResult{Acknowledged: true}

		all, err := c.load(ctx, tx)
		if err != nil {
			return err
		}

		target := first(all, filter)
		if target == nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HDel(ctx, c.key, target[store.IDField].(string))
			return nil
		})
		if err == nil {
			res.DeletedCount = 1
		}
		return err
	})

	return res, err
}

// withTx runs fn under WATCH on the collection key, retrying when another
// writer touched the hash first.
func (c *Collection) withTx(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := c.rdb.Watch(ctx, fn, c.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%s: too much contention", c.name)
}

// load returns every document sorted by id. ObjectIDs start with their
// creation time, so this is roughly insertion order.
func (c *Collection) load(ctx context.Context, r hashReader) ([]store.Document, error) {
	raw, err := r.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		doc := store.Document{}
		if err := json.Unmarshal([]byte(raw[id]), &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		doc[store.IDField] = id
		docs = append(docs, doc)
	}
	return docs, nil
}

// hashReader is satisfied by both *redis.Client and *redis.Tx.
type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func first(docs []store.Document, filter store.Filter) store.Document {
	for _, d := range docs {
		if store.Matches(d, filter) {
			return d
		}
	}
	return nil
}

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
