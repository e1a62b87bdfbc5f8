package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/bistro/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri and pings the deployment before returning.
func Open(ctx context.Context, uri, dbName string) (*DB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(5 * time.Second).
		// nested documents come back as maps so they encode as JSON objects
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &DB{client: client, db: client.Database(dbName)}, nil
}

func (d *DB) Collection(name string) store.Collection {
	return &Collection{coll: d.db.Collection(name)}
}

// EnsureUnique builds a unique index on field. Documents where field is
// missing or not a string stay out of the index.
func (d *DB) EnsureUnique(ctx context.Context, collection, field string) error {
	_, err := d.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
		Options: options.Index().
			SetName(field + "_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{field: bson.M{"$type": "string"}}),
	})
	if err != nil {
		return fmt.Errorf("mongo unique index %s.%s: %w", collection, field, err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

type Collection struct {
	coll *mongo.Collection
}

func (c *Collection) Name() string { return c.coll.Name() }

func (c *Collection) Find(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	cur, err := c.coll.Find(ctx, toBSON(filter))
	if err != nil {
		return nil, err
	}

	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, store.Document(r))
	}
	return docs, nil
}

func (c *Collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	var row bson.M

	err := c.coll.FindOne(ctx, toBSON(filter)).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return store.Document(row), nil
}

func (c *Collection) InsertOne(ctx context.Context, doc store.Document) (store.InsertOneResult, error) {
	res, err := c.coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.InsertOneResult{}, fmt.Errorf("%w: %w", store.ErrDuplicate, err)
		}
		return store.InsertOneResult{}, err
	}

	out := store.InsertOneResult{Acknowledged: true}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		out.InsertedID = id.Hex()
	default:
		out.InsertedID = fmt.Sprint(id)
	}
	return out, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter store.Filter, set store.Document) (store.UpdateResult, error) {
	res, err := c.coll.UpdateOne(ctx, toBSON(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		return store.UpdateResult{}, err
	}

	return store.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter store.Filter) (store.DeleteResult, error) {
	res, err := c.coll.DeleteOne(ctx, toBSON(filter))
	if err != nil {
		return store.DeleteResult{}, err
	}

	return store.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func toBSON(filter store.Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}
