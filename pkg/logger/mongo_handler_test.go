package logger

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeInserter struct {
	mu   sync.Mutex
	docs []interface{}
}

func (f *fakeInserter) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, docs...)
	return &mongo.InsertManyResult{}, nil
}

func TestMongoHandler_FlushesOnClose(t *testing.T) {
	fi := &fakeInserter{}
	h := newMongoHandler(fi)

	log := slog.New(h).With("request_id", "abc123")
	log.Info("special price saved", "sku", "A1")
	h.Close()

	require.Len(t, fi.docs, 1)
	doc := fi.docs[0].(LogDocument)
	assert.Equal(t, "abc123", doc.RequestID)
	assert.Equal(t, "special price saved", doc.Msg)
	assert.Equal(t, "INFO", doc.Level)
	assert.Equal(t, "A1", doc.Attrs["sku"])
}

func TestMongoHandler_GroupPrefixesKeys(t *testing.T) {
	fi := &fakeInserter{}
	h := newMongoHandler(fi)

	slog.New(h).WithGroup("http").Warn("slow", "path", "/api/products")
	h.Close()
	h.Close() // idempotent

	require.Len(t, fi.docs, 1)
	assert.Equal(t, "/api/products", fi.docs[0].(LogDocument).Attrs["http.path"])
}

func TestWithCtx_FallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	scoped := L.With("request_id", "r1")
	ctx := InjectLogger(context.Background(), scoped)
	assert.Same(t, scoped, WithCtx(ctx))
}
