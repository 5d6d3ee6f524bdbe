package document

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoIDField is MongoDB's primary key field.
const mongoIDField = "_id"

// MongoStore maps each collection onto a MongoDB collection. Document ids
// are ObjectIDs exposed as their hex form.
type MongoStore struct {
	db     *mongo.Database
	health func(context.Context) error
}

// NewMongoStore creates a store over db. health is used by HealthCheck;
// pass the owning client's HealthCheck.
func NewMongoStore(db *mongo.Database, health func(context.Context) error) *MongoStore {
	return &MongoStore{db: db, health: health}
}

// FindAll returns every document in collection in _id order, which follows
// insertion time for ObjectIDs.
func (s *MongoStore) FindAll(ctx context.Context, collection string) ([]Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: mongoIDField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	docs := []Document{}
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", collection, err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return docs, nil
}

// FindByID returns ErrNotFound for absent ids and for ids that are not
// valid ObjectIDs.
func (s *MongoStore) FindByID(ctx context.Context, collection, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var raw bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{mongoIDField: oid}).Decode(&raw)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying %s %s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

// Insert stores doc under a new ObjectID.
func (s *MongoStore) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	oid := primitive.NewObjectID()
	body := toBSON(doc)
	body[mongoIDField] = oid

	if _, err := s.db.Collection(collection).InsertOne(ctx, body); err != nil {
		return nil, fmt.Errorf("inserting into %s: %w", collection, err)
	}

	stored := doc.withoutID()
	stored[FieldID] = oid.Hex()
	return stored, nil
}

// Replace overwrites the document with id.
func (s *MongoStore) Replace(ctx context.Context, collection, id string, doc Document) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	result, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{mongoIDField: oid}, toBSON(doc))
	if err != nil {
		return nil, fmt.Errorf("replacing %s %s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	stored := doc.withoutID()
	stored[FieldID] = id
	return stored, nil
}

// DeleteByID returns ErrNotFound when id is absent.
func (s *MongoStore) DeleteByID(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{mongoIDField: oid})
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", collection, id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// HealthCheck pings the server through the owning client.
func (s *MongoStore) HealthCheck(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	return s.health(ctx)
}

// toBSON copies doc without its exposed id.
func toBSON(doc Document) bson.M {
	out := bson.M{}
	for k, v := range doc {
		if k == FieldID || k == mongoIDField {
			continue
		}
		out[k] = v
	}
	return out
}

// fromBSON exposes _id as a hex id and normalises driver-specific values.
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == mongoIDField {
			if oid, ok := v.(primitive.ObjectID); ok {
				doc[FieldID] = oid.Hex()
			} else {
				doc[FieldID] = fmt.Sprint(v)
			}
			continue
		}
		doc[k] = normaliseBSON(v)
	}
	return doc
}

func normaliseBSON(v any) any {
	switch t := v.(type) {
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case bson.M:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normaliseBSON(inner)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normaliseBSON(inner)
		}
		return out
	default:
		return v
	}
}
