package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/skovric/filedrop"
	"github.com/skovric/filedrop/database/postgres"
	"github.com/stretchr/testify/assert"
)

func TestMigrate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tableName := fmt.Sprintf("files_%s", getRandomString(t))
	tables := filedrop.Tables{Files: tableName}
	defer func() { _ = dropTable(ctx, pool, tableName) }()

	t.Run("creates a valid schema", func(t *testing.T) {
		err := postgres.Migrate(ctx, pool, tables)
		assert.NoError(t, err)

		err = postgres.ValidateSchema(ctx, pool, tables)
		assert.NoError(t, err)
	})

	t.Run("is idempotent", func(t *testing.T) {
		err := postgres.Migrate(ctx, pool, tables)
		assert.NoError(t, err)
	})

	t.Run("invalid table name", func(t *testing.T) {
		err := postgres.Migrate(ctx, pool, filedrop.Tables{Files: "Files; drop table users"})
		assert.Error(t, err)
	})
}

func TestValidateSchema_MissingTable(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	err := postgres.ValidateSchema(ctx, pool, filedrop.Tables{Files: fmt.Sprintf("files_%s", getRandomString(t))})
	assert.Error(t, err)
}
