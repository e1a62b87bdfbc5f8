// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/bistro/internal/store"
)

// Run exercises db. Each subtest uses its own collection name prefixed
// with prefix so runs against a shared server do not collide.
func Run(t *testing.T, db store.Database, prefix string) {
	t.Helper()

	t.Run("insert and find", func(t *testing.T) {
		ctx := context.Background()
		c := db.Collection(prefix + "carts")

		a, err := c.InsertOne(ctx, store.Document{store.IDField: store.NewID(), "email": "a@x.com", "price": 9.5})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if !a.Acknowledged || len(a.InsertedID) != 24 {
			t.Fatalf("unexpected insert result: %+v", a)
		}

		if _, err := c.InsertOne(ctx, store.Document{store.IDField: store.NewID(), "email": "b@x.com"}); err != nil {
			t.Fatalf("insert: %v", err)
		}

		docs, err := c.Find(ctx, store.Filter{"email": "a@x.com"})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("expected 1 document, got %d: %v", len(docs), docs)
		}
		if store.Normalize(docs[0][store.IDField]) != a.InsertedID {
			t.Fatalf("id mismatch: got %v want %s", docs[0][store.IDField], a.InsertedID)
		}
		if store.Normalize(docs[0]["price"]) != 9.5 {
			t.Fatalf("price not preserved: %v", docs[0]["price"])
		}

		all, err := c.Find(ctx, nil)
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(all))
		}
	})

	t.Run("find one", func(t *testing.T) {
		ctx := context.Background()
		c := db.Collection(prefix + "users")

		if _, err := c.FindOne(ctx, store.Filter{"email": "ghost@x.com"}); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}

		if _, err := c.InsertOne(ctx, store.Document{store.IDField: store.NewID(), "email": "a@x.com", "name": "A"}); err != nil {
			t.Fatalf("insert: %v", err)
		}

		u, err := c.FindOne(ctx, store.Filter{"email": "a@x.com"})
		if err != nil {
			t.Fatalf("find one: %v", err)
		}
		if u["name"] != "A" {
			t.Fatalf("unexpected document: %v", u)
		}
	})

	t.Run("update merges", func(t *testing.T) {
		ctx := context.Background()
		c := db.Collection(prefix + "members")

		if _, err := c.InsertOne(ctx, store.Document{store.IDField: store.NewID(), "email": "a@x.com", "name": "A"}); err != nil {
			t.Fatalf("insert: %v", err)
		}

		res, err := c.UpdateOne(ctx, store.Filter{"email": "a@x.com"}, store.Document{"role": "admin"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if res.MatchedCount != 1 || res.ModifiedCount != 1 {
			t.Fatalf("unexpected update result: %+v", res)
		}

		res, err = c.UpdateOne(ctx, store.Filter{"email": "nobody@x.com"}, store.Document{"role": "admin"})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if res.MatchedCount != 0 || res.ModifiedCount != 0 {
			t.Fatalf("unexpected update result for no match: %+v", res)
		}

		u, err := c.FindOne(ctx, store.Filter{"email": "a@x.com"})
		if err != nil {
			t.Fatalf("find one: %v", err)
		}
		if u["role"] != "admin" || u["name"] != "A" {
			t.Fatalf("expected merged document, got %v", u)
		}
	})

	t.Run("delete one", func(t *testing.T) {
		ctx := context.Background()
		c := db.Collection(prefix + "orders")

		ins, err := c.InsertOne(ctx, store.Document{store.IDField: store.NewID(), "email": "a@x.com"})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		id, err := store.ParseID(ins.InsertedID)
		if err != nil {
			t.Fatalf("parse id: %v", err)
		}

		res, err := c.DeleteOne(ctx, store.Filter{store.IDField: id})
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if res.DeletedCount != 1 {
			t.Fatalf("expected 1 deletion, got %+v", res)
		}

		res, err = c.DeleteOne(ctx, store.Filter{store.IDField: id})
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if res.DeletedCount != 0 {
			t.Fatalf("expected 0 deletions, got %+v", res)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := db.Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}

// RunUnique checks that db rejects a second document with the same value
// in an indexed field and leaves other documents alone.
func RunUnique(t *testing.T, db store.Database, collection string) {
	t.Helper()
	ctx := context.Background()

	ix, ok := db.(store.UniqueIndexer)
	if !ok {
		t.Fatalf("%T does not support unique indexes", db)
	}
	if err := ix.EnsureUnique(ctx, collection, "email"); err != nil {
		t.Fatalf("ensure unique: %v", err)
	}

	c := db.Collection(collection)
	if _, err := c.InsertOne(ctx, store.Document{store.IDField: store.NewID(), "email": "dup@x.com"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := c.InsertOne(ctx, store.Document{store.IDField: store.NewID(), "email": "dup@x.com"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
	if _, err := c.InsertOne(ctx, store.Document{store.IDField: store.NewID(), "name": "no email"}); err != nil {
		t.Fatalf("insert without email: %v", err)
	}

	docs, err := c.Find(ctx, store.Filter{"email": "dup@x.com"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents for one email, want 1", len(docs))
	}
}
