//go:build integration

package mongo

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/getmockd/mockserve/internal/storage"
	"github.com/getmockd/mockserve/internal/storage/storagetest"
	"github.com/getmockd/mockserve/pkg/requestlog"
)

// startMongo runs a disposable MongoDB container and returns a connected client.
func startMongo(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	}
	container, err := testcontainers.GenericContainer(ctx, req)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	c, err := Connect(ctx, fmt.Sprintf("mongodb://%s:%s", host, port.Port()), "mockserve-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestMongo_MockStore(t *testing.T) {
	base := startMongo(t)
	var n atomic.Int32

	storagetest.Run(t, func(t *testing.T) storage.MockStore {
		c := &Client{client: base.client, db: base.client.Database(fmt.Sprintf("mocks-%d", n.Add(1)))}
		require.NoError(t, c.ensureIndexes(context.Background()))
		return c.Mocks()
	})
}

func TestMongo_RequestSink(t *testing.T) {
	c := startMongo(t)
	ctx := context.Background()

	rec := requestlog.NewRecorder(c.Requests())
	rec.Record(&requestlog.Entry{Method: "POST", Path: "/orders", Body: []byte(`{"qty":2}`)})
	rec.Record(&requestlog.Entry{Method: "GET", Path: "/orders"})
	require.NoError(t, rec.Close(ctx))

	coll := c.db.Collection(RequestsCollection)
	count, err := coll.CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var doc bson.M
	require.NoError(t, coll.FindOne(ctx, bson.D{{Key: "method", Value: "POST"}}).Decode(&doc))
	assert.Equal(t, "/orders", doc["path"])
	assert.Equal(t, bson.M{"qty": int64(2)}, doc["body"])

	var bare bson.M
	require.NoError(t, coll.FindOne(ctx, bson.D{{Key: "method", Value: "GET"}}).Decode(&bare))
	assert.Nil(t, bare["body"])
}
