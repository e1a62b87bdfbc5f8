package db_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/bistro/internal/config"
	"github.com/geocoder89/bistro/internal/db"
	"github.com/geocoder89/bistro/internal/repo"
	"github.com/geocoder89/bistro/internal/store"
	"github.com/geocoder89/bistro/internal/store/memory"
)

func TestOpen_Memory(t *testing.T) {
	database, err := db.Open(context.Background(), config.Config{StoreDriver: config.DriverMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	users := repo.NewUserRepo(database)
	if _, err := users.Insert(context.Background(), store.Document{"email": "a@x.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := users.Insert(context.Background(), store.Document{"email": "a@x.com"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("email must be unique after Open, got %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := db.Open(context.Background(), config.Config{StoreDriver: "sqlite"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		seed  store.Document
		email string
		want  int
	}{
		{name: "creates missing admin", email: "boss@x.com", want: 1},
		{name: "promotes existing user", seed: store.Document{"email": "boss@x.com", "name": "Boss"}, email: "boss@x.com", want: 1},
		{name: "leaves existing admin alone", seed: store.Document{"email": "boss@x.com", "role": "admin"}, email: "boss@x.com", want: 1},
		{name: "no email configured", email: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := repo.NewUserRepo(memory.New())
			if tt.seed != nil {
				if _, err := users.Insert(ctx, tt.seed); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}

			if err := db.EnsureAdminUser(ctx, users, tt.email); err != nil {
				t.Fatalf("ensure admin: %v", err)
			}
			// running twice must not duplicate
			if err := db.EnsureAdminUser(ctx, users, tt.email); err != nil {
				t.Fatalf("ensure admin again: %v", err)
			}

			all, err := users.ListAll(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(all) != tt.want {
				t.Fatalf("got %d users, want %d", len(all), tt.want)
			}
			if tt.want == 1 && all[0]["role"] != "admin" {
				t.Fatalf("user not admin: %v", all[0])
			}
			if tt.seed != nil && tt.seed["name"] != nil && all[0]["name"] != tt.seed["name"] {
				t.Fatalf("promotion must keep other fields: %v", all[0])
			}
		})
	}
}

const fixturesYAML = `
menu:
  - name: Tomato Soup
    category: soup
    price: 6.5
  - name: Caesar Salad
    category: salad
    price: 8
reviews:
  - name: Ana
    rating: 5
    details: Lovely place
users:
  - email: chef@bistro.test
    name: Chef
    role: admin
`

func TestLoadAndSeedFixtures(t *testing.T) {
	ctx := context.Background()

	f, err := db.LoadFixtures(strings.NewReader(fixturesYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Menu) != 2 || len(f.Reviews) != 1 || len(f.Users) != 1 {
		t.Fatalf("unexpected fixtures %+v", f)
	}

	database := memory.New()

	res, err := db.Seed(ctx, database, f)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res[repo.MenuCollection] != 2 || res[repo.ReviewCollection] != 1 || res[repo.UserCollection] != 1 {
		t.Fatalf("unexpected counts %v", res)
	}

	// users are keyed by email; the rest is appended again
	res, err = db.Seed(ctx, database, f)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if res[repo.UserCollection] != 0 {
		t.Fatalf("existing user inserted again: %v", res)
	}

	admin, err := repo.NewUserRepo(database).FindByEmail(ctx, "chef@bistro.test")
	if err != nil {
		t.Fatalf("find seeded user: %v", err)
	}
	if admin["role"] != "admin" {
		t.Fatalf("seeded role lost: %v", admin)
	}

	menu, err := repo.NewMenuRepo(database).ListWhere(ctx, store.Filter{"category": "soup"})
	if err != nil {
		t.Fatalf("list menu: %v", err)
	}
	if len(menu) != 2 {
		t.Fatalf("got %d soups after two seeds, want 2", len(menu))
	}
}

func TestLoadFixtures_UnknownSection(t *testing.T) {
	if _, err := db.LoadFixtures(strings.NewReader("orders:\n  - id: 1\n")); err == nil {
		t.Fatal("expected error for unknown top-level key")
	}
}

func TestLoadFixtures_Empty(t *testing.T) {
	f, err := db.LoadFixtures(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if len(f.Menu)+len(f.Users) != 0 {
		t.Fatalf("expected empty fixtures, got %+v", f)
	}
}
