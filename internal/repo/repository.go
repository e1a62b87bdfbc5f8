// Package repo exposes one uniform CRUD accessor per collection.
package repo

import (
	"context"
	"fmt"

	"github.com/geocoder89/bistro/internal/domain/user"
	"github.com/geocoder89/bistro/internal/store"
)

const (
	MenuCollection   = "menu"
	ReviewCollection = "reviews"
	CartCollection   = "carts"
	UserCollection   = "users"
)

type Repository struct {
	coll store.Collection
}

func New(coll store.Collection) *Repository {
	return &Repository{coll: coll}
}

func NewMenuRepo(db store.Database) *Repository   { return New(db.Collection(MenuCollection)) }
func NewReviewRepo(db store.Database) *Repository { return New(db.Collection(ReviewCollection)) }
func NewCartRepo(db store.Database) *Repository   { return New(db.Collection(CartCollection)) }
func NewUserRepo(db store.Database) *Repository   { return New(db.Collection(UserCollection)) }

func (r *Repository) ListAll(ctx context.Context) ([]store.Document, error) {
	return r.ListWhere(ctx, nil)
}

func (r *Repository) ListWhere(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	docs, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: list: %w", r.coll.Name(), err)
	}
	return docs, nil
}

// FindOne returns store.ErrNotFound when nothing matches.
func (r *Repository) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	doc, err := r.coll.FindOne(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: find one: %w", r.coll.Name(), err)
	}
	return doc, nil
}

// Insert stores doc under a fresh id. Any client-supplied _id is replaced;
// every other field is kept as sent.
func (r *Repository) Insert(ctx context.Context, doc store.Document) (store.InsertOneResult, error) {
	doc = store.Clone(doc)
	if doc == nil {
		doc = store.Document{}
	}
	doc[store.IDField] = store.NewID()

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return store.InsertOneResult{}, fmt.Errorf("%s: insert: %w", r.coll.Name(), err)
	}
	return res, nil
}

func (r *Repository) UpdateOneWhere(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	res, err := r.coll.UpdateOne(ctx, filter, set)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("%s: update: %w", r.coll.Name(), err)
	}
	return res, nil
}

func (r *Repository) DeleteOneWhere(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("%s: delete: %w", r.coll.Name(), err)
	}
	return res, nil
}

// DeleteByID fails with store.ErrInvalidID when id is not an ObjectID hex.
func (r *Repository) DeleteByID(ctx context.Context, id string) (store.DeleteResult, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("%s: delete %q: %w", r.coll.Name(), id, err)
	}
	return r.DeleteOneWhere(ctx, store.Filter{store.IDField: oid})
}

// FindByEmail looks a user up by its unique email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (store.Document, error) {
	return r.FindOne(ctx, store.Filter{user.EmailField: email})
}
