package handlers_test

import (
	"context"

	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRepo satisfies every per-handler store interface. Unset functions
// behave like an empty collection.
type fakeRepo struct {
	listAllFn   func(ctx context.Context) ([]store.Document, error)
	listWhereFn func(ctx context.Context, filter store.Filter) ([]store.Document, error)
	findOneFn   func(ctx context.Context, filter store.Filter) (store.Document, error)
	insertFn    func(ctx context.Context, doc store.Document) (store.InsertOneResult, error)
	updateFn    func(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error)
	deleteFn    func(ctx context.Context, filter store.Filter) (store.DeleteResult, error)
	deleteIDFn  func(ctx context.Context, id string) (store.DeleteResult, error)
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]store.Document, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}
	return []store.Document{}, nil
}

func (f *fakeRepo) ListWhere(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	if f.listWhereFn != nil {
		return f.listWhereFn(ctx, filter)
	}
	return []store.Document{}, nil
}

func (f *fakeRepo) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	if f.findOneFn != nil {
		return f.findOneFn(ctx, filter)
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) Insert(ctx context.Context, doc store.Document) (store.InsertOneResult, error) {
	if f.insertFn != nil {
		return f.insertFn(ctx, doc)
	}
	return store.InsertOneResult{Acknowledged: true, InsertedID: store.NewID().Hex()}, nil
}

func (f *fakeRepo) UpdateOneWhere(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, filter, set)
	}
	return store.UpdateResult{Acknowledged: true}, nil
}

func (f *fakeRepo) DeleteOneWhere(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, filter)
	}
	return store.DeleteResult{Acknowledged: true}, nil
}

func (f *fakeRepo) DeleteByID(ctx context.Context, id string) (store.DeleteResult, error) {
	if f.deleteIDFn != nil {
		return f.deleteIDFn(ctx, id)
	}
	return store.DeleteResult{Acknowledged: true}, nil
}
