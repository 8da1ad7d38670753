package migrations_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pricebook/app/models"
	_ "github.com/shashiranjanraj/pricebook/database/migrations"
	"github.com/shashiranjanraj/pricebook/pkg/database"
	"github.com/shashiranjanraj/pricebook/pkg/migration"
)

func TestMigrateRollbackStatus(t *testing.T) {
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ctx := context.Background()
	var out bytes.Buffer
	runner := migration.New(db).WithOutput(&out)

	require.NoError(t, runner.Run(ctx))
	assert.True(t, db.Migrator().HasTable(&models.Product{}))
	assert.True(t, db.Migrator().HasTable(&models.SpecialPrice{}))
	assert.True(t, db.Migrator().HasIndex(&models.SpecialPrice{}, "idx_special_user_sku"))

	pending, err := runner.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	out.Reset()
	require.NoError(t, runner.Run(ctx))
	assert.Contains(t, out.String(), "Nothing to migrate.")

	out.Reset()
	require.NoError(t, runner.PrintStatus(ctx))
	assert.Contains(t, out.String(), "20260101000001_create_special_prices_table")
	assert.Contains(t, out.String(), "Ran")

	states, err := runner.Status(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, 1, states[0].Batch)
	assert.True(t, states[1].Ran())

	require.NoError(t, runner.Rollback(ctx))
	assert.False(t, db.Migrator().HasTable(&models.Product{}))
	assert.False(t, db.Migrator().HasTable(&models.SpecialPrice{}))

	pending, err = runner.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
