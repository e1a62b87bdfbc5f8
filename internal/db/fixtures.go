package db

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/geocoder89/bistro/internal/domain/user"
	"github.com/geocoder89/bistro/internal/repo"
	"github.com/geocoder89/bistro/internal/store"
	"gopkg.in/yaml.v3"
)

// Fixtures is the seed file layout. Every entry is stored as given, under a
// fresh id.
type Fixtures struct {
	Menu    []store.Document `yaml:"menu"`
	Reviews []store.Document `yaml:"reviews"`
	Users   []store.Document `yaml:"users"`
	Carts   []store.Document `yaml:"carts"`
}

func LoadFixtures(r io.Reader) (Fixtures, error) {
	var f Fixtures

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}

	return f, nil
}

// SeedResult counts inserted documents per collection.
type SeedResult map[string]int

// Seed inserts the fixtures. Users whose email already exists are skipped so
// the file can be loaded more than once.
func Seed(ctx context.Context, db store.Database, f Fixtures) (SeedResult, error) {
	res := SeedResult{}

	plain := []struct {
		coll string
		docs []store.Document
	}{
		{repo.MenuCollection, f.Menu},
		{repo.ReviewCollection, f.Reviews},
		{repo.CartCollection, f.Carts},
	}

	for _, p := range plain {
		r := repo.New(db.Collection(p.coll))
		for _, doc := range p.docs {
			if _, err := r.Insert(ctx, doc); err != nil {
				return res, err
			}
			res[p.coll]++
		}
	}

	users := repo.NewUserRepo(db)
	for _, u := range f.Users {
		email, _ := u[user.EmailField].(string)
		if email == "" {
			return res, errors.New("seed users: entry without email")
		}

		_, err := users.FindByEmail(ctx, email)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, err
		}

		_, err = users.Insert(ctx, u)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return res, err
		}
		res[repo.UserCollection]++
	}

	return res, nil
}
