// Package config resolves runtime settings once at startup. Values come from
// the environment with built-in fallbacks; commands may override them with
// flags before handing the result to the components that need it.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultBackendURL     = "http://localhost:8000"
	DefaultWebAddr        = ":8080"
	DefaultAPIAddr        = ":8000"
	DefaultDBPath         = "barang.sqlite3"
	DefaultMaxUploadBytes = 10 << 20
	DefaultCORSOrigin     = "*"
	DefaultS3Region       = "us-east-1"
	DefaultS3Bucket       = "barang-images"
)

// Image store drivers.
const (
	ImageStoreSQLite = "sqlite"
	ImageStoreS3     = "s3"
)

// Config holds every setting the web form and the backend read.
type Config struct {
	// BackendURL is the origin the form posts items to.
	BackendURL string
	WebAddr    string

	APIAddr        string
	DBPath         string
	MaxUploadBytes int64
	CORSOrigin     string
	Images         ImageStore

	LogPath string
}

// ImageStore selects where the backend keeps uploaded images.
type ImageStore struct {
	Driver         string
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKeyID  string
	S3SecretKey    string
	S3UsePathStyle bool
}

// Load reads the environment. Empty variables count as unset.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("backend_url", DefaultBackendURL)
	v.SetDefault("web_addr", DefaultWebAddr)
	v.SetDefault("api_addr", DefaultAPIAddr)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("cors_origin", DefaultCORSOrigin)
	v.SetDefault("log_path", "")
	v.SetDefault("image_store", ImageStoreSQLite)
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", DefaultS3Region)
	v.SetDefault("s3_bucket", DefaultS3Bucket)
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")
	v.SetDefault("s3_use_path_style", true)

	// The form historically read its origin from the bundler's variable.
	if err := v.BindEnv("backend_url", "BACKEND_URL", "VITE_BACKEND_URL"); err != nil {
		return nil, fmt.Errorf("binding backend_url: %w", err)
	}
	v.AutomaticEnv()

	cfg := &Config{
		BackendURL:     v.GetString("backend_url"),
		WebAddr:        v.GetString("web_addr"),
		APIAddr:        v.GetString("api_addr"),
		DBPath:         v.GetString("db_path"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		CORSOrigin:     v.GetString("cors_origin"),
		LogPath:        v.GetString("log_path"),
		Images: ImageStore{
			Driver:         strings.ToLower(v.GetString("image_store")),
			S3Endpoint:     v.GetString("s3_endpoint"),
			S3Region:       v.GetString("s3_region"),
			S3Bucket:       v.GetString("s3_bucket"),
			S3AccessKeyID:  v.GetString("s3_access_key_id"),
			S3SecretKey:    v.GetString("s3_secret_access_key"),
			S3UsePathStyle: v.GetBool("s3_use_path_style"),
		},
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize validates the settings and canonicalizes the backend origin.
// Call it again after applying flag overrides.
func (c *Config) Normalize() error {
	backend, err := NormalizeBackendURL(c.BackendURL)
	if err != nil {
		return err
	}
	c.BackendURL = backend

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}

	switch c.Images.Driver {
	case ImageStoreSQLite:
	case ImageStoreS3:
		if c.Images.S3Bucket == "" {
			return fmt.Errorf("image store %q requires a bucket", ImageStoreS3)
		}
	default:
		return fmt.Errorf("unknown image store %q", c.Images.Driver)
	}
	return nil
}

// NormalizeBackendURL checks that raw is an absolute http(s) origin and
// strips any trailing slash, so paths can be appended directly.
func NormalizeBackendURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultBackendURL, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("backend url %q must use http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("backend url %q has no host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
