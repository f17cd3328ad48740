package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultDatabaseName is used when neither configuration nor the connection
// string names a database.
const DefaultDatabaseName = "test"

// Cursor interface for mocking
type Cursor interface {
	All(ctx context.Context, results interface{}) error
	Close(ctx context.Context) error
}

// SingleResult interface for mocking
type SingleResult interface {
	Decode(v interface{}) error
}

// Collection interface for mocking
type Collection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) SingleResult
}

// Database is an established session to the document store.
type Database interface {
	Name() string
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Connector opens the database session used for the process lifetime.
type Connector interface {
	Connect(ctx context.Context, uri string) (Database, error)
}

// mongoCollection adapts *mongo.Collection to Collection
type mongoCollection struct {
	*mongo.Collection
}

func (m *mongoCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	cursor, err := m.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

func (m *mongoCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) SingleResult {
	return m.Collection.FindOne(ctx, filter, opts...)
}

// MongoDB holds the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Name returns the database name.
func (m *MongoDB) Name() string {
	return m.Database.Name()
}

// Collection returns a handle to the named collection.
func (m *MongoDB) Collection(name string) Collection {
	return &mongoCollection{Collection: m.Database.Collection(name)}
}

// Ping checks the connection against the primary.
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close closes the MongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// MongoConnector connects with the official MongoDB driver.
type MongoConnector struct {
	// DatabaseName overrides the database named in the connection string.
	DatabaseName string
	// Timeout bounds connect plus the initial ping. Zero means no extra bound.
	Timeout     time.Duration
	MaxPoolSize uint64
	Logger      *slog.Logger
}

// Connect dials the server and pings it, so a returned Database is known to
// be reachable.
func (c *MongoConnector) Connect(ctx context.Context, uri string) (Database, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid MongoDB connection string: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	clientOptions := options.Client().ApplyURI(uri)
	if c.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(c.MaxPoolSize)
	}
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	name := c.DatabaseName
	if name == "" {
		name = cs.Database
	}
	if name == "" {
		name = DefaultDatabaseName
	}

	if c.Logger != nil {
		c.Logger.DebugContext(ctx, "MongoDB ping succeeded",
			slog.Any("hosts", cs.Hosts),
			slog.String("database", name))
	}

	return &MongoDB{
		Client:   client,
		Database: client.Database(name),
	}, nil
}
