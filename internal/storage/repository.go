package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections backing the route groups.
const (
	UsersCollection      = "users"
	ProductsCollection   = "products"
	BiddingsCollection   = "biddings"
	CategoriesCollection = "categories"
)

const (
	DefaultListLimit int64 = 50
	MaxListLimit     int64 = 500
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for ids that are not 24-character hex ObjectIDs.
	ErrInvalidID = errors.New("invalid document id")
)

// Repository reads schemaless documents from one collection. Documents are
// returned as-is since their shape is owned by the route collaborators.
type Repository struct {
	store *Store
	name  string
}

// NewRepository binds a repository to a collection of the stored database.
// The handle is resolved per call, so the repository may be built before the
// connect stage completes.
func NewRepository(store *Store, collection string) *Repository {
	return &Repository{store: store, name: collection}
}

// Name returns the collection name.
func (r *Repository) Name() string {
	return r.name
}

func (r *Repository) collection() (Collection, error) {
	db, err := r.store.Database()
	if err != nil {
		return nil, err
	}
	return db.Collection(r.name), nil
}

// List returns up to limit documents in _id order. Limits outside
// (0, MaxListLimit] are clamped.
func (r *Repository) List(ctx context.Context, limit int64) ([]bson.M, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.name, err)
	}
	defer cursor.Close(ctx)

	docs := make([]bson.M, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.name, err)
	}
	return docs, nil
}

// Get returns the document with the given hex ObjectID.
func (r *Repository) Get(ctx context.Context, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s %s: %w", r.name, id, ErrNotFound)
		}
		return nil, fmt.Errorf("find %s %s: %w", r.name, id, err)
	}
	return doc, nil
}
