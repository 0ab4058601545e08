package format

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tjodalv/libscraper/internal/types"
)

// Mongo persists records to a MongoDB collection instead of a file. The
// collection is named after the base name of the output path, so each
// seed URL lands in its own collection. Register it under a name of your
// choosing and select that name as the output format.
type Mongo struct {
	client   *mongo.Client
	database string
	logger   *slog.Logger
}

// NewMongo connects to MongoDB and returns a Mongo formatter writing to
// the given database.
func NewMongo(uri, database string, logger *slog.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &Mongo{
		client:   client,
		database: database,
		logger:   logger.With("component", "mongo_formatter"),
	}, nil
}

// Format implements Formatter. The reported location is
// "database.collection" rather than a filesystem path.
func (m *Mongo) Format(path string, records []*types.Record) (string, error) {
	if len(records) == 0 {
		return "", types.ErrNoRecords
	}

	collName := collectionName(path)
	coll := m.client.Database(m.database).Collection(collName)

	docs := make([]any, len(records))
	for i, r := range records {
		doc := make(map[string]any, r.Len())
		for _, k := range r.Keys() {
			v, _ := r.Get(k)
			doc[k] = v
		}
		docs[i] = doc
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return "", &types.FormatError{Format: "mongodb", Err: err}
	}

	location := m.database + "." + collName
	m.logger.Info("records stored", "collection", location, "records", len(records))
	return location, nil
}

// Close disconnects from MongoDB.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// collectionName derives a collection name from an output path.
func collectionName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		return "items"
	}
	return base
}
