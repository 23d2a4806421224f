// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package ratings

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/productrec/internal/recommend"
)

const defaultMongoConnectTimeout = 10 * time.Second

// MongoSource reads rating documents from a MongoDB collection.
// Field names come from Columns, so any document layout with flat user,
// product and rating fields can be used.
type MongoSource struct {
	client     *mongo.Client
	collection *mongo.Collection
	columns    Columns
	database   string
}

// NewMongoSource connects to MongoDB and verifies the connection with a
// ping before returning.
func NewMongoSource(ctx context.Context, cfg MongoConfig, columns Columns) (*MongoSource, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo source uri is required")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("mongo source database and collection are required")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultMongoConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background()) //nolint:errcheck // ping error takes precedence
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return newMongoSource(client, cfg.Database, cfg.Collection, columns), nil
}

func newMongoSource(client *mongo.Client, database, collection string, columns Columns) *MongoSource {
	return &MongoSource{
		client:     client,
		collection: client.Database(database).Collection(collection),
		columns:    columns.withDefaults(),
		database:   database,
	}
}

// Name identifies the source.
func (s *MongoSource) Name() string {
	return fmt.Sprintf("mongo:%s.%s", s.database, s.collection.Name())
}

// Close disconnects the client.
func (s *MongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// LoadRatings scans the whole collection, projecting only the three
// configured fields.
func (s *MongoSource) LoadRatings(ctx context.Context) ([]recommend.RatingRecord, error) {
	projection := bson.M{
		"_id":             0,
		s.columns.User:    1,
		s.columns.Product: 1,
		s.columns.Rating:  1,
	}

	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }() //nolint:errcheck // error surfaced via cursor.Err

	records := make([]recommend.RatingRecord, 0, 1024)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			records = append(records, recommend.RatingRecord{Rating: math.NaN()})
			continue
		}
		records = append(records, documentRecord(doc, s.columns))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}

	return records, nil
}

// documentRecord maps a decoded document to a record. Missing fields yield
// an invalid record rather than an error.
func documentRecord(doc bson.M, cols Columns) recommend.RatingRecord {
	return recommend.RatingRecord{
		UserID:    documentID(doc[cols.User]),
		ProductID: documentID(doc[cols.Product]),
		Rating:    asFloat64(doc[cols.Rating]),
	}
}

func documentID(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return asString(v)
}
