package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store/sqlstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// TestContext returns a context with a timeout suitable for a single test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB connects to the MongoDB at GROUPBOOK_TEST_MONGO_URI (default
// mongodb://localhost:27017) and returns a fresh, uniquely named database
// that is dropped when the test ends. The test is skipped when no server is
// reachable or when running with -short.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB test in short mode")
	}

	uri := os.Getenv("GROUPBOOK_TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("MongoDB not available: %v", err)
	}

	name := fmt.Sprintf("groupbook_test_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// NewSQLStore returns a migrated in-memory SQLite store that is closed when
// the test ends.
func NewSQLStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	st, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.MigrateUp())
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}
