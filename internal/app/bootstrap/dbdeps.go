// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/learnhub/internal/app/system/objectstore"
	"github.com/dalemusser/learnhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend clients and other long-lived resources for the
// app. They are created in ConnectDB and released in Shutdown.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	ObjectStore   objectstore.Store
	// UploadLimiter throttles asset uploads per user; nil when disabled.
	UploadLimiter *ratelimit.Limiter
}
