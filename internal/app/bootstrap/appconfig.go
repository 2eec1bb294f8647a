// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; ports, TLS, log level and
// CORS live in CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: learnhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Object storage configuration
	StorageType               string // "s3", "gcs" or "memory"
	StorageBucket             string // Bucket uploads go to and deletes are limited to
	StoragePublicBaseURL      string // Optional CDN/base URL for object locations
	StorageS3Region           string
	StorageS3Endpoint         string // S3-compatible endpoint (MinIO, LocalStack); blank for AWS
	StorageS3AccessKey        string // Static credentials; blank uses the default AWS chain
	StorageS3SecretKey        string
	StorageGCSCredentialsFile string // Service account JSON; blank uses ADC

	// Upload limits
	MaxImageBytes   int64 // Max JSON body for base64 image uploads
	MaxVideoBytes   int64 // Max multipart body for video uploads
	UploadRateLimit int   // Uploads per user per minute; 0 disables

	// Operation timeouts
	TimeoutShort  time.Duration // single-document reads and writes
	TimeoutMedium time.Duration // list queries
	TimeoutLong   time.Duration // object-store transfers
}
