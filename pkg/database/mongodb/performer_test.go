package mongodb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huynhanx03/go-commons/pkg/concurrent/collector"
	"github.com/huynhanx03/go-commons/pkg/internal/testutil"
	"github.com/huynhanx03/go-commons/pkg/settings"
)

const (
	mongoImage = "mongo:6"
	mongoPort  = "27017/tcp"
)

type auditEntry struct {
	ID     int    `bson:"_id"`
	Action string `bson:"action"`
}

// fakeInserter records InsertMany calls.
type fakeInserter struct {
	calls   [][]interface{}
	ordered []bool
	err     error
}

func (f *fakeInserter) InsertMany(_ context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	copied := append([]interface{}(nil), docs...)
	f.calls = append(f.calls, copied)
	for _, o := range opts {
		if o.Ordered != nil {
			f.ordered = append(f.ordered, *o.Ordered)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.InsertManyResult{InsertedIDs: copied}, nil
}

func (f *fakeInserter) Name() string { return "audit" }

func TestInsertPerformer_Perform(t *testing.T) {
	f := &fakeInserter{}
	p := NewInsertPerformer[auditEntry](f)
	assert.Equal(t, "mongodb:audit", p.String())

	batch := []auditEntry{{ID: 1, Action: "login"}, {ID: 2, Action: "logout"}}
	require.NoError(t, p.Perform(context.Background(), batch))

	require.Len(t, f.calls, 1)
	assert.Equal(t, []interface{}{batch[0], batch[1]}, f.calls[0])
	assert.Equal(t, []bool{true}, f.ordered)
}

func TestInsertPerformer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "transport",
			err:     errors.New("connection reset"),
			wantMsg: "failed to insert 2 documents into audit",
		},
		{
			name: "bulk_write",
			err: mongo.BulkWriteException{
				WriteErrors: []mongo.BulkWriteError{{WriteError: mongo.WriteError{Index: 1, Code: 11000, Message: "duplicate key"}}},
			},
			wantMsg: "1 of 2 documents rejected by audit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewInsertPerformer[auditEntry](&fakeInserter{err: tt.err})
			err := p.Perform(context.Background(), []auditEntry{{ID: 1}, {ID: 2}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestBuildURI(t *testing.T) {
	cfg := &settings.MongoDB{Host: "db", Username: "app", Password: "p@ss"}
	setDefaultConfig(cfg)

	assert.Equal(t, "mongodb://app:p%40ss@db:27017", buildURI(cfg))
	assert.Equal(t, "mongodb://db:27018", buildURI(&settings.MongoDB{Host: "db", Port: 27018}))
}

func TestNewClient_MissingHost(t *testing.T) {
	_, err := NewClient(context.Background(), &settings.MongoDB{})
	assert.True(t, errors.Is(err, ErrConnectionFailed))
}

func TestInsertPerformer_Integration(t *testing.T) {
	testutil.SkipWithoutDocker(t)

	ctx := context.Background()
	host, port := testutil.StartContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        mongoImage,
		ExposedPorts: []string{mongoPort},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(2 * time.Minute),
	})

	client, err := NewClient(ctx, &settings.MongoDB{Host: host, Port: port, Timeout: 10})
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	coll := client.Database("testdb").Collection("audit")
	p := NewInsertPerformer[auditEntry](coll)

	t.Run("Collector", func(t *testing.T) {
		c, err := collector.New[auditEntry](p, settings.Collector{MaxQueueSize: 32, MaxBatchSize: 8})
		require.NoError(t, err)

		for i := 1; i <= 20; i++ {
			require.NoError(t, c.Enqueue(ctx, auditEntry{ID: i, Action: fmt.Sprintf("a%d", i)}))
		}
		require.NoError(t, c.Close(ctx))
		require.NoError(t, c.Run(ctx))

		n, err := coll.CountDocuments(ctx, bson.M{})
		require.NoError(t, err)
		assert.EqualValues(t, 20, n)
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		err := p.Perform(ctx, []auditEntry{{ID: 100}, {ID: 1}, {ID: 101}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 3 documents rejected")

		// Ordered insert stops at the duplicate.
		n, err := coll.CountDocuments(ctx, bson.M{"_id": bson.M{"$gte": 100}})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}
