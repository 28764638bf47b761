package mongo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/getmockd/mockserve/internal/id"
	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/pkg/mock"
)

// mockDocument is the persisted form of a definition. response_data holds
// the payload as a native BSON value.
type mockDocument struct {
	ID           string `bson:"_id"`
	Method       string `bson:"method"`
	Path         string `bson:"path"`
	StatusCode   int    `bson:"http_status_code"`
	ResponseType string `bson:"response_type"`
	ResponseData any    `bson:"response_data"`
}

// MockStore implements storage.MockStore on a MongoDB collection.
type MockStore struct {
	coll *mongo.Collection
}

// Define upserts the definition for d's route key. Every field but _id is
// replaced.
func (s *MockStore) Define(ctx context.Context, d *mock.Definition) error {
	if d == nil {
		return nil
	}
	def := d.Clone()
	def.Normalize()

	data, err := toBSONValue(def.Data)
	if err != nil {
		return err
	}
	newID := def.ID
	if newID == "" {
		newID = id.ULID()
	}
	update := bson.M{
		"$set": bson.M{
			"http_status_code": def.StatusCode,
			"response_type":    string(def.ResponseType),
			"response_data":    data,
		},
		"$setOnInsert": bson.M{"_id": newID},
	}

	filter := keyFilter(def.Key())
	opts := options.Update().SetUpsert(true)
	_, err = s.coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an insert race on the unique index; the document now exists.
		_, err = s.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("define %s: %w", def.Key(), err)
	}
	return nil
}

// Patch sets only the supplied fields of an existing document.
func (s *MockStore) Patch(ctx context.Context, key mock.Key, p mock.Patch) error {
	if p.IsEmpty() {
		return storage.ErrEmptyPatch
	}
	key = mock.NormalizeKey(key.Method, key.Path)

	set := bson.M{}
	if p.StatusCode != nil {
		set["http_status_code"] = *p.StatusCode
	}
	if p.ResponseType != nil {
		set["response_type"] = string(*p.ResponseType)
	}
	if p.Data != nil {
		data, err := toBSONValue(p.Data)
		if err != nil {
			return err
		}
		set["response_data"] = data
	}

	res, err := s.coll.UpdateOne(ctx, keyFilter(key), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("patch %s: %w", key, err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Lookup finds the definition stored under key.
func (s *MockStore) Lookup(ctx context.Context, key mock.Key) (*mock.Definition, error) {
	key = mock.NormalizeKey(key.Method, key.Path)

	var doc mockDocument
	err := s.coll.FindOne(ctx, keyFilter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", key, err)
	}
	return doc.definition()
}

// List returns all definitions ordered by method then path.
func (s *MockStore) List(ctx context.Context) ([]*mock.Definition, error) {
	opts := options.Find().SetSort(bson.D{{Key: "method", Value: 1}, {Key: "path", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list mocks: %w", err)
	}
	defer cur.Close(ctx)

	var result []*mock.Definition
	for cur.Next(ctx) {
		var doc mockDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode mock: %w", err)
		}
		d, err := doc.definition()
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list mocks: %w", err)
	}
	return result, nil
}

func keyFilter(k mock.Key) bson.D {
	return bson.D{{Key: "method", Value: k.Method}, {Key: "path", Value: k.Path}}
}

func (doc *mockDocument) definition() (*mock.Definition, error) {
	raw, err := json.Marshal(doc.ResponseData)
	if err != nil {
		return nil, fmt.Errorf("encode response_data of %s %s: %w", doc.Method, doc.Path, err)
	}
	rt := mock.ResponseType(doc.ResponseType)
	if parsed, err := mock.ParseResponseType(doc.ResponseType); err == nil {
		rt = parsed
	}
	payload, err := mock.DecodePayload(rt, raw)
	if err != nil {
		return nil, fmt.Errorf("decode response_data of %s %s: %w", doc.Method, doc.Path, err)
	}
	d := &mock.Definition{
		ID:           doc.ID,
		Method:       doc.Method,
		Path:         doc.Path,
		StatusCode:   doc.StatusCode,
		ResponseType: rt,
		Data:         payload,
	}
	if d.StatusCode == 0 {
		d.StatusCode = mock.DefaultStatusCode
	}
	return d, nil
}

// toBSONValue converts a payload to a value the driver stores natively:
// objects become documents, strings become strings.
func toBSONValue(p mock.Payload) (any, error) {
	raw, err := mock.EncodePayload(p)
	if err != nil {
		return nil, err
	}
	return jsonToValue(raw)
}

func jsonToValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response_data: %w", err)
	}
	return v, nil
}

var _ storage.MockStore = (*MockStore)(nil)
