// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/store/sqlstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Store is the entity store every component uses. The backend-specific
// handles are set only for the configured backend and are used for schema
// setup and shutdown.
type DBDeps struct {
	Store   store.Store
	Backend string

	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	SQL *sqlstore.Store
}
