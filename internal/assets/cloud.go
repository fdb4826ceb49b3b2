package assets

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/desertthunder/spotingest/internal/shared"
)

const contentType = "image/jpeg"

// NewBlobStore builds the store selected by cfg.Backend.
//
// Stores holding network clients also implement io.Closer.
func NewBlobStore(ctx context.Context, cfg shared.AssetsConfig) (BlobStore, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir)
	case "s3":
		return NewS3Store(ctx, cfg)
	case "gcs":
		return NewGCSStore(ctx, cfg)
	case "azure":
		return NewAzureStore(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown asset backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}

func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes blobs to an S3 bucket. A configured endpoint switches to path-style
// addressing for S3-compatible services such as MinIO.
type S3Store struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3Store loads AWS credentials from the default chain.
func NewS3Store(ctx context.Context, cfg shared.AssetsConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 backend requires a bucket", shared.ErrInvalidConfig)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Put uploads data and returns an s3:// URI.
func (s *S3Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	key := objectKey(s.prefix, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

// GCSStore writes blobs to a Google Cloud Storage bucket using application default credentials.
// STORAGE_EMULATOR_HOST is honoured by the client library.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore creates the storage client.
func NewGCSStore(ctx context.Context, cfg shared.AssetsConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: gcs backend requires a bucket", shared.ErrInvalidConfig)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Put writes data and returns a gs:// URI.
func (s *GCSStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	key := objectKey(s.prefix, name)

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gs://%s/%s: %w", s.bucket, key, err)
	}
	return "gs://" + s.bucket + "/" + key, nil
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// AzureStore writes blobs to an Azure Blob Storage container.
type AzureStore struct {
	client    *azblob.Client
	container string
	prefix    string
}

// NewAzureStore connects with a storage account connection string.
func NewAzureStore(cfg shared.AssetsConfig) (*AzureStore, error) {
	if cfg.Container == "" {
		return nil, fmt.Errorf("%w: azure backend requires a container", shared.ErrInvalidConfig)
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}
	return &AzureStore{client: client, container: cfg.Container, prefix: cfg.Prefix}, nil
}

// Put uploads data and returns the blob URL.
func (s *AzureStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	key := objectKey(s.prefix, name)
	if _, err := s.client.UploadBuffer(ctx, s.container, key, data, nil); err != nil {
		return "", fmt.Errorf("failed to upload %s/%s: %w", s.container, key, err)
	}
	return strings.TrimSuffix(s.client.URL(), "/") + "/" + s.container + "/" + key, nil
}
