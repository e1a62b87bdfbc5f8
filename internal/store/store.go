// Package store is the document-store boundary. Repositories talk to a
// Database and its Collections; backends live in sub-packages.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
	// ErrDuplicate is returned by InsertOne when a unique field clashes.
	ErrDuplicate = errors.New("duplicate key")
)

// IDField is the primary key field of every document.
const IDField = "_id"

// Document is a schemaless record as stored and as returned to clients.
type Document map[string]any

// Filter selects documents by exact equality on top-level fields.
// A nil value matches documents where the field is missing or null.
type Filter map[string]any

type InsertOneResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

type Collection interface {
	Name() string
	Find(ctx context.Context, filter Filter) ([]Document, error)
	FindOne(ctx context.Context, filter Filter) (Document, error)
	// InsertOne stores doc, which already carries its _id.
	InsertOne(ctx context.Context, doc Document) (InsertOneResult, error)
	// UpdateOne merges set into the first matching document.
	UpdateOne(ctx context.Context, filter Filter, set Document) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (DeleteResult, error)
}

// UniqueIndexer is implemented by backends that can reject a second
// document carrying the same non-null value in field.
type UniqueIndexer interface {
	EnsureUnique(ctx context.Context, collection, field string) error
}

type Database interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewID returns a fresh ObjectID.
func NewID() primitive.ObjectID {
	return primitive.NewObjectID()
}

// ParseID parses a 24 hex character ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
