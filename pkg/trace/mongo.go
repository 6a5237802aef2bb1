package trace

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/morphtree/pkg/errors"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Defaults for [MongoConfig].
const (
	DefaultMongoDatabase   = "morphtree"
	DefaultMongoCollection = "traces"
)

// MongoStore keeps traces as documents in one collection. The document ID is
// the trace ID; a frame_count field lets listings skip the frames.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// mongoDoc is the stored shape of a trace.
type mongoDoc struct {
	Trace      `bson:",inline"`
	FrameCount int `bson:"frame_count"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if err := errors.ValidateURL(cfg.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	s := NewMongoStoreFromClient(client, cfg.Database, cfg.Collection)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient uses an existing client. Close will not disconnect it.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

// Save upserts t by ID.
func (s *MongoStore) Save(ctx context.Context, t *Trace) error {
	if err := t.Validate(); err != nil {
		return err
	}
	doc := mongoDoc{Trace: *t, FrameCount: len(t.Frames)}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, doc, opts); err != nil {
		return fmt.Errorf("save trace: %w", err)
	}
	return nil
}

// Load finds the newest trace matching ref by ID or name.
func (s *MongoStore) Load(ctx context.Context, ref string) (*Trace, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var doc mongoDoc
	err := s.coll.FindOne(ctx, refFilter(ref), opts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFound(ref)
		}
		return nil, fmt.Errorf("load trace: %w", err)
	}
	t := doc.Trace
	return &t, nil
}

// List returns summaries newest first without fetching frames.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"frames": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	var out []Summary
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode traces: %w", err)
	}
	return out, nil
}

// Delete removes the newest trace matching ref.
func (s *MongoStore) Delete(ctx context.Context, ref string) error {
	t, err := s.Load(ctx, ref)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": t.ID})
	if err != nil {
		return fmt.Errorf("delete trace: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(ref)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func refFilter(ref string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"_id": ref},
		bson.M{"name": ref},
	}}
}

var _ Store = (*MongoStore)(nil)
