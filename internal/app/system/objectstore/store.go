// Package objectstore is the asset proxy's view of blob storage: put an
// object under the configured bucket, delete it by descriptor.
//
// The bytes go through a waffle storage.Store (S3, GCS or in-memory) built
// in ConnectDB and closed in Shutdown. Callers hold a Store, never a
// package-level client.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// ErrForeignBucket is returned by Delete when the descriptor names a bucket
// other than the one this store writes to.
var ErrForeignBucket = errors.New("objectstore: bucket is not managed by this store")

// publicRead is the canned ACL every upload gets. The GCS backend maps it
// to publicRead.
const publicRead = "public-read"

// PutInput describes one object to write. Body should be an io.ReadSeeker
// so backends that sign payloads can rewind it.
type PutInput struct {
	Key         string
	Body        io.Reader
	ContentType string
}

// Store is what the asset handlers and health check depend on.
type Store interface {
	// Put writes the object world-readable and returns its descriptor.
	Put(ctx context.Context, in PutInput) (models.AssetRef, error)
	// Delete removes the object named by ref. Deleting a missing key succeeds.
	Delete(ctx context.Context, ref models.AssetRef) error
	// Bucket is the bucket uploads go to.
	Bucket() string
	// Name identifies the backend for logs and health output.
	Name() string
	Close() error
}

// Blob adapts a storage.Store to Store, stamping descriptors with bucket.
type Blob struct {
	st     storage.Store
	bucket string
}

// New wraps st. bucket is the name written into every descriptor and the
// only bucket Delete accepts.
func New(st storage.Store, bucket string) *Blob {
	return &Blob{st: st, bucket: bucket}
}

// NewMemory returns an in-memory Blob whose locations read
// "memory://<bucket>/<key>".
func NewMemory(bucket string) *Blob {
	return New(storage.NewMemory(storage.MemoryConfig{BaseURL: "memory://" + bucket}), bucket)
}

// Put implements Store.
func (b *Blob) Put(ctx context.Context, in PutInput) (models.AssetRef, error) {
	if strings.TrimSpace(in.Key) == "" {
		return models.AssetRef{}, errors.New("objectstore: empty key")
	}
	err := b.st.Put(ctx, in.Key, in.Body, &storage.PutOptions{
		ContentType: in.ContentType,
		ACL:         publicRead,
	})
	if err != nil {
		return models.AssetRef{}, fmt.Errorf("objectstore: put %s: %w", in.Key, err)
	}

	ref := models.AssetRef{
		Bucket:   b.bucket,
		Key:      in.Key,
		Location: b.st.URL(in.Key),
	}
	// The memory backend reports no ETag; a failed Head only loses the tag.
	if info, err := b.st.Head(ctx, in.Key); err == nil {
		ref.ETag = info.ETag
	}
	return ref, nil
}

// Delete implements Store.
func (b *Blob) Delete(ctx context.Context, ref models.AssetRef) error {
	if err := checkBucket(b.bucket, ref); err != nil {
		return err
	}
	if err := b.st.Delete(ctx, ref.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("objectstore: delete %s: %w", ref.Key, err)
	}
	return nil
}

// Bucket implements Store.
func (b *Blob) Bucket() string { return b.bucket }

// Name implements Store.
func (b *Blob) Name() string { return b.st.Backend() }

// Close releases the backend's client when it holds one (GCS does).
func (b *Blob) Close() error {
	if c, ok := b.st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Config selects and configures a backend.
type Config struct {
	Type          string // "s3", "gcs" or "memory"
	Bucket        string
	PublicBaseURL string

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	GCSCredentialsFile string
}

// Open builds the backend named by cfg.Type.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	var (
		st  storage.Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "s3":
		st, err = storage.NewS3(ctx, storage.S3Config{
			Bucket:          cfg.Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3Endpoint != "",
			BaseURL:         s3BaseURL(cfg),
			DefaultACL:      publicRead,
		})
	case "gcs":
		st, err = storage.NewGCS(ctx, storage.GCSConfig{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.GCSCredentialsFile,
			BaseURL:         strings.TrimRight(cfg.PublicBaseURL, "/"),
			DefaultACL:      "publicRead",
		})
	case "memory", "":
		base := strings.TrimRight(cfg.PublicBaseURL, "/")
		if base == "" {
			base = "memory://" + cfg.Bucket
		}
		st = storage.NewMemory(storage.MemoryConfig{BaseURL: base})
	default:
		return nil, fmt.Errorf("objectstore: unknown storage type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("objectstore: open %s: %w", cfg.Type, err)
	}

	b := New(st, cfg.Bucket)
	logger.Info("object store initialized",
		zap.String("backend", b.Name()),
		zap.String("bucket", b.Bucket()),
		zap.String("public_base_url", cfg.PublicBaseURL))
	return b, nil
}

// s3BaseURL is the public URL prefix for S3 objects. With a custom endpoint
// and no explicit base, objects are addressed path-style under the endpoint.
func s3BaseURL(cfg Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.S3Endpoint != "" {
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.Bucket
	}
	return ""
}

// checkBucket resolves the bucket a delete targets. An empty descriptor
// bucket means the store's own.
func checkBucket(own string, ref models.AssetRef) error {
	if ref.Bucket != "" && ref.Bucket != own {
		return fmt.Errorf("%w: %q", ErrForeignBucket, ref.Bucket)
	}
	if strings.TrimSpace(ref.Key) == "" {
		return errors.New("objectstore: empty key")
	}
	return nil
}
