package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/geocoder89/bistro/internal/store"
	"github.com/geocoder89/bistro/internal/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, New(), "")
	storetest.RunUnique(t, New(), "users")
}

func TestCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	carts := New().Collection("carts")

	first, err := carts.InsertOne(ctx, store.Document{"email": "a@x.com", "name": "Soup"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !first.Acknowledged || len(first.InsertedID) != 24 {
		t.Fatalf("unexpected insert result: %+v", first)
	}

	if _, err := carts.InsertOne(ctx, store.Document{"email": "b@x.com", "name": "Salad"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	docs, err := carts.Find(ctx, store.Filter{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(docs) != 1 || docs[0]["name"] != "Soup" {
		t.Fatalf("unexpected find result: %v", docs)
	}

	all, _ := carts.Find(ctx, nil)
	if len(all) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(all))
	}

	id, _ := store.ParseID(first.InsertedID)
	del, err := carts.DeleteOne(ctx, store.Filter{store.IDField: id})
	if err != nil || del.DeletedCount != 1 {
		t.Fatalf("delete: %+v %v", del, err)
	}

	del, _ = carts.DeleteOne(ctx, store.Filter{store.IDField: id})
	if del.DeletedCount != 0 {
		t.Fatalf("second delete should match nothing, got %+v", del)
	}
}

func TestCollection_FindOneNotFound(t *testing.T) {
	users := New().Collection("users")

	if _, err := users.FindOne(context.Background(), store.Filter{"email": "nobody@x.com"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCollection_UpdateCounts(t *testing.T) {
	ctx := context.Background()
	users := New().Collection("users")

	if _, err := users.InsertOne(ctx, store.Document{"email": "a@x.com", "name": "A"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tests := []struct {
		name         string
		filter       store.Filter
		wantMatched  int64
		wantModified int64
	}{
		{name: "first promotion", filter: store.Filter{"email": "a@x.com"}, wantMatched: 1, wantModified: 1},
		{name: "already admin", filter: store.Filter{"email": "a@x.com"}, wantMatched: 1, wantModified: 0},
		{name: "unknown user", filter: store.Filter{"email": "z@x.com"}, wantMatched: 0, wantModified: 0},
	}

	for _, tt := range tests {
		res, err := users.UpdateOne(ctx, tt.filter, store.Document{"role": "admin"})
		if err != nil {
			t.Fatalf("%s: update: %v", tt.name, err)
		}
		if res.MatchedCount != tt.wantMatched || res.ModifiedCount != tt.wantModified {
			t.Fatalf("%s: got %+v", tt.name, res)
		}
	}

	u, err := users.FindOne(ctx, store.Filter{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if u["role"] != "admin" || u["name"] != "A" {
		t.Fatalf("update must merge fields, got %v", u)
	}
}

func TestCollection_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	menu := New().Collection("menu")

	if _, err := menu.InsertOne(ctx, store.Document{"name": "Pie"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	docs, _ := menu.Find(ctx, nil)
	docs[0]["name"] = "mutated"

	again, _ := menu.Find(ctx, nil)
	if again[0]["name"] != "Pie" {
		t.Fatal("callers must not be able to mutate stored documents")
	}
}

func TestEnsureUnique(t *testing.T) {
	ctx := context.Background()
	db := New()

	if err := db.EnsureUnique(ctx, "users", "email"); err != nil {
		t.Fatalf("ensure unique: %v", err)
	}
	// idempotent
	if err := db.EnsureUnique(ctx, "users", "email"); err != nil {
		t.Fatalf("ensure unique again: %v", err)
	}

	users := db.Collection("users")

	if _, err := users.InsertOne(ctx, store.Document{"email": "a@x.com"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := users.InsertOne(ctx, store.Document{"email": "a@x.com", "name": "again"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}

	// documents without the field are not constrained
	for i := 0; i < 2; i++ {
		if _, err := users.InsertOne(ctx, store.Document{"name": "anonymous"}); err != nil {
			t.Fatalf("insert without email: %v", err)
		}
	}

	// other collections are not constrained
	if _, err := db.Collection("carts").InsertOne(ctx, store.Document{"email": "a@x.com"}); err != nil {
		t.Fatalf("cart insert: %v", err)
	}
	if _, err := db.Collection("carts").InsertOne(ctx, store.Document{"email": "a@x.com"}); err != nil {
		t.Fatalf("second cart insert: %v", err)
	}
}

func TestEnsureUnique_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	db := New()
	if err := db.EnsureUnique(ctx, "users", "email"); err != nil {
		t.Fatalf("ensure unique: %v", err)
	}
	users := db.Collection("users")

	const n = 50
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := users.InsertOne(ctx, store.Document{"email": "race@x.com"}); err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if oks != 1 {
		t.Fatalf("got %d successful inserts, want 1", oks)
	}
}
