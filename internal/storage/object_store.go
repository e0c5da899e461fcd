package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"rosterdesk/internal/config"
)

const backupPrefix = "backups/"

// ObjectStore keeps offsite copies of database dumps in an S3-compatible
// bucket.
type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

// ObjectKey is where the dump named name is stored in the bucket.
func ObjectKey(name string) string {
	return path.Join(backupPrefix, name)
}

// UploadBackup copies the dump at localPath into the bucket and returns
// the number of bytes stored.
func (s *ObjectStore) UploadBackup(ctx context.Context, name, localPath string) (int64, error) {
	info, err := s.client.FPutObject(ctx, s.cfg.Bucket, ObjectKey(name), localPath, minio.PutObjectOptions{
		ContentType: "application/sql",
		UserMetadata: map[string]string{
			"source": "rosterdesk",
		},
	})
	if err != nil {
		return 0, fmt.Errorf("upload %s: %w", name, err)
	}
	return info.Size, nil
}

func (s *ObjectStore) RemoveBackup(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, ObjectKey(name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
