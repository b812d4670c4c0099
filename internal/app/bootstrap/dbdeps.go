// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/liderplan/internal/app/system/filestore"
	"github.com/dalemusser/liderplan/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Files is the evidence blob store; closeFiles releases it when the
	// backend holds a client.
	Files      filestore.Store
	closeFiles func() error

	// sessionSweeper is built in ConnectDB, started in Startup and stopped
	// in Shutdown.
	sessionSweeper *workers.Sweeper
}
