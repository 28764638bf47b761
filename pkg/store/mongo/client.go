// Package mongo stores mock definitions and request log entries in MongoDB.
//
// Definitions live in the "mocks" collection, one document per route key
// enforced by a unique index on (method, path). Request log entries are
// appended to the "requests" collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default settings.
const (
	DefaultDatabase = "mock-services"

	MocksCollection    = "mocks"
	RequestsCollection = "requests"

	connectTimeout = 10 * time.Second
)

// Client wraps a connected MongoDB client and the selected database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	if uri == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if database == "" {
		database = DefaultDatabase
	}

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(connectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	c := &Client{client: client, db: client.Database(database)}
	if err := c.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(MocksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "method", Value: 1}, {Key: "path", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("method_path"),
	})
	if err != nil {
		return fmt.Errorf("create mocks index: %w", err)
	}
	return nil
}

// Mocks returns a MockStore over the mocks collection.
func (c *Client) Mocks() *MockStore {
	return &MockStore{coll: c.db.Collection(MocksCollection)}
}

// Requests returns a request log sink over the requests collection.
func (c *Client) Requests() *RequestSink {
	return &RequestSink{coll: c.db.Collection(RequestsCollection)}
}

// Database returns the selected database name.
func (c *Client) Database() string {
	return c.db.Name()
}

// Close disconnects from the server.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
