package memory

import (
	"context"
	"reflect"
	"sync"

	"github.com/geocoder89/bistro/internal/store"
)

// DB keeps every collection in process memory. Used by tests and by
// STORE_DRIVER=memory for local runs.
type DB struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

func New() *DB {
	return &DB{collections: make(map[string]*Collection)}
}

func (d *DB) Collection(name string) store.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.collections[name]
	if !ok {
		c = &Collection{name: name}
		d.collections[name] = c
	}
	return c
}

// EnsureUnique makes later inserts into collection fail with
// store.ErrDuplicate when field repeats a stored non-null value.
func (d *DB) EnsureUnique(_ context.Context, collection, field string) error {
	c := d.Collection(collection).(*Collection)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.unique {
		if f == field {
			return nil
		}
	}
	c.unique = append(c.unique, field)
	return nil
}

func (d *DB) Ping(context.Context) error  { return nil }
func (d *DB) Close(context.Context) error { return nil }

type Collection struct {
	name string

	mu     sync.RWMutex
	docs   []store.Document // insertion order
	unique []string
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Find(_ context.Context, filter store.Filter) ([]store.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]store.Document, 0, len(c.docs))
	for _, d := range c.docs {
		if store.Matches(d, filter) {
			out = append(out, store.Clone(d))
		}
	}
	return out, nil
}

func (c *Collection) FindOne(_ context.Context, filter store.Filter) (store.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(filter); i >= 0 {
		return store.Clone(c.docs[i]), nil
	}
	return nil, store.ErrNotFound
}

func (c *Collection) InsertOne(_ context.Context, doc store.Document) (store.InsertOneResult, error) {
	doc = store.Clone(doc)
	id, ok := doc[store.IDField]
	if !ok {
		id = store.NewID()
		doc[store.IDField] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clashes(doc) {
		return store.InsertOneResult{}, store.ErrDuplicate
	}
	c.docs = append(c.docs, doc)

	return store.InsertOneResult{
		Acknowledged: true,
		InsertedID:   idString(id),
	}, nil
}

func (c *Collection) UpdateOne(_ context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := store.UpdateResult{Acknowledged: true}

	i := c.indexOf(filter)
	if i < 0 {
		return res, nil
	}
	res.MatchedCount = 1

	doc := c.docs[i]
	changed := false
	for k, v := range set {
		old, present := doc[k]
		if !present || !reflect.DeepEqual(store.Normalize(old), store.Normalize(v)) {
			changed = true
		}
		doc[k] = store.Clone(store.Document{k: v})[k]
	}

	if changed {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *Collection) DeleteOne(_ context.Context, filter store.Filter) (store.DeleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := store.DeleteResult{Acknowledged: true}

	i := c.indexOf(filter)
	if i < 0 {
		return res, nil
	}

	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	res.DeletedCount = 1
	return res, nil
}

// indexOf must be called with c.mu held.
func (c *Collection) indexOf(filter store.Filter) int {
	for i, d := range c.docs {
		if store.Matches(d, filter) {
			return i
		}
	}
	return -1
}

func idString(id any) string {
	if s, ok := store.Normalize(id).(string); ok {
		return s
	}
	return ""
}

// clashes reports whether doc repeats a unique value. Caller holds mu.
func (c *Collection) clashes(doc store.Document) bool {
	for _, field := range c.unique {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		if c.indexOf(store.Filter{field: v}) >= 0 {
			return true
		}
	}
	return false
}
