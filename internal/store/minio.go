package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/simonw/screenshot-worker/internal/config"
)

// User metadata keys persisted with every artifact.
const (
	metaTargetURL   = "Shot-Url"
	metaVersion     = "Shot-Version"
	metaWidth       = "Shot-Width"
	metaHeight      = "Shot-Height"
	metaGeneratedAt = "Shot-Generated-At"
)

// MinioStore persists artifacts as objects in an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore initializes the MinIO client from config and returns a
// Store backed by the configured bucket.
func NewMinioStore(cfg *config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Get(ctx context.Context, key string) (*Artifact, bool, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat object: %w", err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, false, fmt.Errorf("read object: %w", err)
	}

	generatedAt, _ := time.Parse(time.RFC3339, info.UserMetadata[metaGeneratedAt])

	return &Artifact{
		Data:         data,
		ContentType:  info.ContentType,
		CacheControl: info.Metadata.Get("Cache-Control"),
		TargetURL:    info.UserMetadata[metaTargetURL],
		Version:      info.UserMetadata[metaVersion],
		Width:        info.UserMetadata[metaWidth],
		Height:       info.UserMetadata[metaHeight],
		GeneratedAt:  generatedAt,
	}, true, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, artifact *Artifact) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(artifact.Data),
		int64(len(artifact.Data)),
		minio.PutObjectOptions{
			ContentType:  artifact.ContentType,
			CacheControl: artifact.CacheControl,
			UserMetadata: map[string]string{
				metaTargetURL:   artifact.TargetURL,
				metaVersion:     artifact.Version,
				metaWidth:       artifact.Width,
				metaHeight:      artifact.Height,
				metaGeneratedAt: artifact.GeneratedAt.UTC().Format(time.RFC3339),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

var _ Store = (*MinioStore)(nil)
