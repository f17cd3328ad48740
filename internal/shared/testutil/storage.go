package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"auctionserver/internal/storage"
)

// FakeCollection is an in-memory storage.Collection.
type FakeCollection struct {
	Docs    []bson.M
	FindErr error
}

// Find returns the stored documents, honoring the limit option.
func (c *FakeCollection) Find(_ context.Context, _ interface{}, opts ...*options.FindOptions) (storage.Cursor, error) {
	if c.FindErr != nil {
		return nil, c.FindErr
	}
	docs := c.Docs
	for _, o := range opts {
		if o != nil && o.Limit != nil && int64(len(docs)) > *o.Limit {
			docs = docs[:*o.Limit]
		}
	}
	return &fakeCursor{docs: docs}, nil
}

// FindOne matches on the _id element of a bson.D filter.
func (c *FakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) storage.SingleResult {
	if c.FindErr != nil {
		return fakeResult{err: c.FindErr}
	}
	var want interface{}
	if d, ok := filter.(bson.D); ok {
		for _, e := range d {
			if e.Key == "_id" {
				want = e.Value
			}
		}
	}
	for _, doc := range c.Docs {
		if doc["_id"] == want {
			return fakeResult{doc: doc}
		}
	}
	return fakeResult{err: mongo.ErrNoDocuments}
}

type fakeCursor struct {
	docs []bson.M
}

func (c *fakeCursor) All(_ context.Context, results interface{}) error {
	out := results.(*[]bson.M)
	*out = append((*out)[:0], c.docs...)
	return nil
}

func (c *fakeCursor) Close(context.Context) error { return nil }

type fakeResult struct {
	doc bson.M
	err error
}

func (r fakeResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(v.(*bson.M)) = r.doc
	return nil
}

// FakeDatabase is an in-memory storage.Database.
type FakeDatabase struct {
	mu          sync.Mutex
	DBName      string
	Collections map[string]*FakeCollection
	PingErr     error
	closed      bool
}

// NewFakeDatabase returns an empty fake named "test".
func NewFakeDatabase() *FakeDatabase {
	return &FakeDatabase{DBName: storage.DefaultDatabaseName, Collections: make(map[string]*FakeCollection)}
}

func (d *FakeDatabase) Name() string { return d.DBName }

func (d *FakeDatabase) Collection(name string) storage.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.Collections[name]
	if !ok {
		c = &FakeCollection{}
		d.Collections[name] = c
	}
	return c
}

func (d *FakeDatabase) Ping(context.Context) error { return d.PingErr }

func (d *FakeDatabase) Close(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *FakeDatabase) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// FakeConnector resolves to DB or Err. When Release is set, Connect blocks
// until Release is closed or ctx ends.
type FakeConnector struct {
	DB      *FakeDatabase
	Err     error
	Release chan struct{}

	calls   atomic.Int32
	lastURI atomic.Value
}

func (c *FakeConnector) Connect(ctx context.Context, uri string) (storage.Database, error) {
	c.calls.Add(1)
	c.lastURI.Store(uri)
	if c.Release != nil {
		select {
		case <-c.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return c.DB, nil
}

// Calls returns how many times Connect ran.
func (c *FakeConnector) Calls() int {
	return int(c.calls.Load())
}

// LastURI returns the connection string of the latest call.
func (c *FakeConnector) LastURI() string {
	uri, _ := c.lastURI.Load().(string)
	return uri
}
