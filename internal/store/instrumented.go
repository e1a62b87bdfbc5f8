package store

import "context"

// Observer times a logical store operation. observability.Prom satisfies it.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

// Instrument reports every collection call to obs under "<collection>.<op>".
func Instrument(db Database, obs Observer) Database {
	if obs == nil {
		return db
	}
	return &instrumentedDB{Database: db, obs: obs}
}

type instrumentedDB struct {
	Database
	obs Observer
}

func (d *instrumentedDB) Collection(name string) Collection {
	return &instrumentedCollection{next: d.Database.Collection(name), obs: d.obs}
}

// EnsureUnique forwards to the wrapped backend when it supports indexes.
func (d *instrumentedDB) EnsureUnique(ctx context.Context, collection, field string) error {
	ix, ok := d.Database.(UniqueIndexer)
	if !ok {
		return nil
	}
	return d.obs.ObserveDB(collection+".ensure_unique", func() error {
		return ix.EnsureUnique(ctx, collection, field)
	})
}

func (d *instrumentedDB) Ping(ctx context.Context) error {
	return d.obs.ObserveDB("ping", func() error {
		return d.Database.Ping(ctx)
	})
}

type instrumentedCollection struct {
	next Collection
	obs  Observer
}

func (c *instrumentedCollection) op(name string) string {
	return c.next.Name() + "." + name
}

func (c *instrumentedCollection) Name() string { return c.next.Name() }

func (c *instrumentedCollection) Find(ctx context.Context, filter Filter) (docs []Document, err error) {
	err = c.obs.ObserveDB(c.op("find"), func() error {
		docs, err = c.next.Find(ctx, filter)
		return err
	})
	return docs, err
}

func (c *instrumentedCollection) FindOne(ctx context.Context, filter Filter) (doc Document, err error) {
	err = c.obs.ObserveDB(c.op("find_one"), func() error {
		doc, err = c.next.FindOne(ctx, filter)
		return err
	})
	return doc, err
}

func (c *instrumentedCollection) InsertOne(ctx context.Context, doc Document) (res InsertOneResult, err error) {
	err = c.obs.ObserveDB(c.op("insert_one"), func() error {
		res, err = c.next.InsertOne(ctx, doc)
		return err
	})
	return res, err
}

func (c *instrumentedCollection) UpdateOne(ctx context.Context, filter Filter, set Document) (res UpdateResult, err error) {
	err = c.obs.ObserveDB(c.op("update_one"), func() error {
		res, err = c.next.UpdateOne(ctx, filter, set)
		return err
	})
	return res, err
}

func (c *instrumentedCollection) DeleteOne(ctx context.Context, filter Filter) (res DeleteResult, err error) {
	err = c.obs.ObserveDB(c.op("delete_one"), func() error {
		res, err = c.next.DeleteOne(ctx, filter)
		return err
	})
	return res, err
}
