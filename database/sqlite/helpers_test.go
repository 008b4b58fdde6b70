package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/skovric/filedrop"
	"github.com/skovric/filedrop/database/sqlite"
	"github.com/stretchr/testify/assert"

	_ "modernc.org/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo with a unique table name for test isolation
func setupTestRepo(t *testing.T) (filedrop.FileRepo, func()) {
	t.Helper()

	ctx := context.Background()

	// Use a unique table name for each test to avoid conflicts
	tableName := fmt.Sprintf("files_%s", getRandomString(t))
	tables := filedrop.Tables{Files: tableName}

	db, err := sql.Open("sqlite", ":memory:")
	assert.NoError(t, err, "failed to open")

	err = sqlite.Migrate(ctx, db, tables)
	assert.NoError(t, err, "failed to migrate")

	err = sqlite.ValidateSchema(ctx, db, tables)
	assert.NoError(t, err, "failed to validate schema")

	repo, err := sqlite.NewRepo(db, tables)
	assert.NoError(t, err, "failed to create repo")

	cleanup := func() {
		_ = db.Close()
	}

	return repo, cleanup
}
