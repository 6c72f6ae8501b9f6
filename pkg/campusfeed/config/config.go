// Package config loads server configuration from the environment and
// builds the stores the service runs on.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campus-feed/pkg/campusfeed"
	memstore "github.com/campushub/campus-feed/pkg/campusfeed/store/memory"
	pgstore "github.com/campushub/campus-feed/pkg/campusfeed/store/postgres"
	fsblob "github.com/campushub/campus-feed/pkg/campusfeed/storage/fs"
	memblob "github.com/campushub/campus-feed/pkg/campusfeed/storage/memory"
	s3blob "github.com/campushub/campus-feed/pkg/campusfeed/storage/s3"
)

// Config is the server configuration, populated from environment
// variables.
type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// Record store
	StoreType   string `env:"STORE_TYPE" env-default:"memory"` // memory, postgres
	DatabaseURL string `env:"DATABASE_URL"`

	// Blob store
	BlobBackend string `env:"BLOB_BACKEND" env-default:"memory"` // memory, fs, s3
	FSBaseDir   string `env:"FS_BASE_DIR" env-default:"./data/blobs"`

	S3Region          string `env:"S3_REGION" env-default:"us-east-1"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`

	// Public URL shape
	CDNBaseURL  string `env:"CDN_BASE_URL"`
	StoreDomain string `env:"STORE_DOMAIN"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.StoreType != "memory" && c.StoreType != "postgres" {
		return errors.New("store_type must be 'memory' or 'postgres'")
	}
	if c.StoreType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}
	switch c.BlobBackend {
	case "memory", "fs":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("s3_bucket is required when using the s3 backend")
		}
	default:
		return errors.New("blob_backend must be 'memory', 'fs' or 's3'")
	}
	return nil
}

// BuildDocStore creates the primary record store.
func (c *Config) BuildDocStore(ctx context.Context) (campusfeed.DocStore, error) {
	switch c.StoreType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		store := pgstore.NewWithPool(pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return memstore.New(), nil
	}
}

// BuildBlobStore creates the configured blob store.
func (c *Config) BuildBlobStore() (campusfeed.BlobStore, error) {
	switch c.BlobBackend {
	case "s3":
		return s3blob.New(s3blob.Config{
			Region:          c.S3Region,
			Bucket:          c.S3Bucket,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			Endpoint:        c.S3Endpoint,
			UsePathStyle:    c.S3UsePathStyle,
		})
	case "fs":
		return fsblob.New(fsblob.Config{BaseDir: c.FSBaseDir})
	default:
		return memblob.New(), nil
	}
}

// BuildURLResolver creates the public URL resolver for asset links.
func (c *Config) BuildURLResolver() *campusfeed.URLResolver {
	var opts []campusfeed.ResolverOption
	if c.CDNBaseURL != "" {
		opts = append(opts, campusfeed.WithCDNBaseURL(c.CDNBaseURL))
	}
	if c.StoreDomain != "" {
		opts = append(opts, campusfeed.WithStoreDomain(c.StoreDomain))
	}
	return campusfeed.NewURLResolver(c.S3Bucket, c.S3Region, opts...)
}
