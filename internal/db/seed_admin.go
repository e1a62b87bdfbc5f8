package db

import (
	"context"
	"errors"

	"github.com/geocoder89/bistro/internal/domain/user"
	"github.com/geocoder89/bistro/internal/store"
)

type AdminSeeder interface {
	FindOne(ctx context.Context, filter store.Filter) (store.Document, error)
	Insert(ctx context.Context, doc store.Document) (store.InsertOneResult, error)
	UpdateOneWhere(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error)
}

// EnsureAdminUser makes sure a user with email exists and carries the admin
// role. An empty email is a no-op.
func EnsureAdminUser(ctx context.Context, users AdminSeeder, email string) error {
	if email == "" {
		return nil
	}

	filter := store.Filter{user.EmailField: email}

	u, err := users.FindOne(ctx, filter)
	if err == nil {
		if user.IsAdmin(u) {
			return nil
		}
		_, err = users.UpdateOneWhere(ctx, filter, store.Document{user.RoleField: user.RoleAdmin})
		return err
	}

	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	_, err = users.Insert(ctx, store.Document{
		user.EmailField: email,
		user.RoleField:  user.RoleAdmin,
	})
	return err
}
