package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDisk_PutGetExists(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir())

	ok, err := d.Exists(ctx, "catalog/products.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Put(ctx, "catalog/products.json", []byte(`[]`)))

	ok, err = d.Exists(ctx, "catalog/products.json")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := d.Get(ctx, "catalog/products.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	files, err := d.Files(ctx, "catalog")
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog/products.json"}, files)
}

func TestLocalDisk_RejectsEscape(t *testing.T) {
	d := NewLocalDisk(t.TempDir())
	_, err := d.Get(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}

func TestUse_UnknownDisk(t *testing.T) {
	_, err := Use("nope")
	assert.ErrorIs(t, err, ErrNotConfigured)

	RegisterDisk("mem-test", NewLocalDisk(t.TempDir()))
	d, err := Use("mem-test")
	require.NoError(t, err)
	assert.NotNil(t, d)
}
