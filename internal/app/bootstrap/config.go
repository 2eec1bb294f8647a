// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/objectstore"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for LearnHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: LEARNHUB_MONGO_URI, LEARNHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "learnhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "learnhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session cookie lifetime (e.g., 24h, 168h)"},

	// Object storage
	{Name: "storage_type", Default: "memory", Desc: "Object store backend: 's3', 'gcs' or 'memory'"},
	{Name: "storage_bucket", Default: "", Desc: "Bucket for uploaded images and videos"},
	{Name: "storage_public_base_url", Default: "", Desc: "Public base URL for stored objects (CDN); blank uses the provider URL"},
	{Name: "storage_s3_region", Default: "us-east-1", Desc: "AWS region for S3"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Custom S3-compatible endpoint (blank for AWS)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key (blank uses the default credential chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_gcs_credentials_file", Default: "", Desc: "GCS service account JSON file (blank uses application default credentials)"},

	// Upload limits
	{Name: "max_image_bytes", Default: limits.DefaultMaxImageBytes, Desc: "Max request size for base64 image uploads"},
	{Name: "max_video_bytes", Default: limits.DefaultMaxVideoBytes, Desc: "Max request size for video uploads"},
	{Name: "upload_rate_limit", Default: 30, Desc: "Uploads allowed per user per minute (0 disables)"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list queries"},
	{Name: "timeout_long", Default: "2m", Desc: "Timeout for object store transfers"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// LEARNHUB_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LEARNHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 7*24*time.Hour),

		StorageType:               strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageBucket:             appValues.String("storage_bucket"),
		StoragePublicBaseURL:      appValues.String("storage_public_base_url"),
		StorageS3Region:           appValues.String("storage_s3_region"),
		StorageS3Endpoint:         appValues.String("storage_s3_endpoint"),
		StorageS3AccessKey:        appValues.String("storage_s3_access_key"),
		StorageS3SecretKey:        appValues.String("storage_s3_secret_key"),
		StorageGCSCredentialsFile: appValues.String("storage_gcs_credentials_file"),

		MaxImageBytes: int64(appValues.Int("max_image_bytes")),
		MaxVideoBytes: int64(appValues.Int("max_video_bytes")),

		UploadRateLimit: appValues.Int("upload_rate_limit"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultUpload),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI and the storage backend are checked here so that
// misconfiguration fails before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "s3", "gcs":
		if appCfg.StorageBucket == "" {
			return fmt.Errorf("storage_type %q requires storage_bucket to be set", appCfg.StorageType)
		}
	case "memory", "":
		if coreCfg != nil && coreCfg.Env == "prod" {
			logger.Warn("in-memory object store in production; uploads are lost on restart")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want s3, gcs or memory)", appCfg.StorageType)
	}

	if appCfg.MaxImageBytes < 0 || appCfg.MaxVideoBytes < 0 {
		return fmt.Errorf("max_image_bytes and max_video_bytes must not be negative")
	}
	if appCfg.UploadRateLimit < 0 {
		return fmt.Errorf("upload_rate_limit must not be negative")
	}

	return nil
}

// storageConfig maps the app config onto the object store settings.
func storageConfig(appCfg AppConfig) objectstore.Config {
	return objectstore.Config{
		Type:               appCfg.StorageType,
		Bucket:             appCfg.StorageBucket,
		PublicBaseURL:      appCfg.StoragePublicBaseURL,
		S3Region:           appCfg.StorageS3Region,
		S3Endpoint:         appCfg.StorageS3Endpoint,
		S3AccessKey:        appCfg.StorageS3AccessKey,
		S3SecretKey:        appCfg.StorageS3SecretKey,
		GCSCredentialsFile: appCfg.StorageGCSCredentialsFile,
	}
}
