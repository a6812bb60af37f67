package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// Provider stores evidence objects and resolves their public URLs back to
// keys.
type Provider interface {
	Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error)
	Download(ctx context.Context, key string) (*DownloadResponse, error)
	Delete(ctx context.Context, key string) error
	FileExists(ctx context.Context, key string) (bool, error)
	// KeyFromURL returns the object key for a URL this provider produced.
	KeyFromURL(url string) (string, bool)
	Name() string
}

type UploadRequest struct {
	Key          string            `json:"key"`
	Reader       io.Reader         `json:"-"`
	ContentType  string            `json:"content_type"`
	Size         int64             `json:"size"`
	Metadata     map[string]string `json:"metadata"`
	CacheControl string            `json:"cache_control"`
}

type UploadResponse struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	ETag     string `json:"etag"`
	Location string `json:"location"`
}

type DownloadResponse struct {
	Reader       io.ReadCloser     `json:"-"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"content_type"`
	Metadata     map[string]string `json:"metadata"`
	LastModified time.Time         `json:"last_modified"`
	ETag         string            `json:"etag"`
}

type Config struct {
	Provider string
	Local    LocalConfig
	S3       S3Config
	GCS      GCSConfig
}

type LocalConfig struct {
	BasePath string
	BaseURL  string
}

type S3Config struct {
	Region    string
	Bucket    string
	CDNDomain string
}

type GCSConfig struct {
	Bucket          string
	CredentialsFile string
	CDNDomain       string
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, errors.New("s3 storage requires a bucket")
		}
		return NewAWSS3Storage(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.CDNDomain)
	case "gcs":
		if cfg.GCS.Bucket == "" {
			return nil, errors.New("gcs storage requires a bucket")
		}
		return NewGCPStorage(ctx, cfg.GCS.Bucket, cfg.GCS.CredentialsFile, cfg.GCS.CDNDomain)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
