package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists records in a MongoDB collection and serves similarity
// queries through an Atlas $vectorSearch index named "vector_index".
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ VectorStore = (*MongoStore)(nil)
var _ SchemaInitializer = (*MongoStore)(nil)
var _ Counter = (*MongoStore)(nil)

const mongoCloseTimeout = 5 * time.Second

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (ms *MongoStore) Upsert(ctx context.Context, id string, embedding []float32, metadata map[string]any) error {
	if ms == nil || ms.collection == nil {
		return errors.New("nil mongo store")
	}
	if id == "" {
		return errors.New("record id is empty")
	}
	doc := bson.M{
		"_id":       id,
		"embedding": float64Embedding(embedding),
		"metadata":  bson.M(metadata),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := ms.collection.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
	return err
}

func (ms *MongoStore) Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]Match, error) {
	if ms == nil || ms.collection == nil || topK <= 0 {
		return nil, nil
	}

	search := bson.D{
		{Key: "index", Value: "vector_index"},
		{Key: "path", Value: "embedding"},
		{Key: "queryVector", Value: float64Embedding(embedding)},
		{Key: "numCandidates", Value: int64(topK * 10)}, // oversample for recall
		{Key: "limit", Value: int64(topK)},
	}
	if len(filter) > 0 {
		match := bson.D{}
		for key, value := range filter {
			match = append(match, bson.E{Key: "metadata." + key, Value: value})
		}
		search = append(search, bson.E{Key: "filter", Value: match})
	}
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := ms.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var matches []Match
	for cursor.Next(ctx) {
		var doc struct {
			ID       string         `bson:"_id"`
			Metadata map[string]any `bson:"metadata"`
			Score    float64        `bson:"score"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		matches = append(matches, Match{ID: doc.ID, Score: doc.Score, Metadata: doc.Metadata})
	}
	return matches, cursor.Err()
}

func (ms *MongoStore) Delete(ctx context.Context, ids ...string) error {
	if ms == nil || ms.collection == nil || len(ids) == 0 {
		return nil
	}
	_, err := ms.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (ms *MongoStore) DeleteByFilter(ctx context.Context, filter Filter) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	if len(filter) == 0 {
		return errors.New("delete by filter requires a non-empty filter")
	}
	query := bson.M{}
	for key, value := range filter {
		query["metadata."+key] = value
	}
	_, err := ms.collection.DeleteMany(ctx, query)
	return err
}

func (ms *MongoStore) Count(ctx context.Context) (int, error) {
	if ms == nil || ms.collection == nil {
		return 0, nil
	}
	count, err := ms.collection.CountDocuments(ctx, bson.M{})
	return int(count), err
}

// CreateSchema ensures the metadata indexes exist. The $vectorSearch index
// itself has to be created through the Atlas API and cannot be built from a
// driver index model.
func (ms *MongoStore) CreateSchema(ctx context.Context, _ string) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "metadata.conversationId", Value: 1}, {Key: "metadata.timestamp", Value: -1}},
			Options: options.Index().SetName("conversation_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "metadata.sessionId", Value: 1}},
			Options: options.Index().SetName("session"),
		},
	}
	_, err := ms.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Close releases the underlying MongoDB client.
func (ms *MongoStore) Close() error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

func float64Embedding(vec []float32) []float64 {
	if len(vec) == 0 {
		return nil
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
