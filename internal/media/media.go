package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Store keeps post media in an S3-compatible bucket.
type Store struct {
	cfg    Config
	client *minio.Client
}

func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Store{cfg: cfg, client: cl}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{})
}

func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error) {
	return s.client.PresignedGetObject(ctx, s.cfg.Bucket, key, ttl, nil)
}

// OwnedKey reports whether ref is an object key that ObjectKey produced for
// userID. Other references, such as external URLs, are left alone.
func OwnedKey(ref string, userID uint) bool {
	prefix := fmt.Sprintf("posts/%d/", userID)
	return strings.HasPrefix(ref, prefix) && len(ref) > len(prefix) && !strings.Contains(ref[len(prefix):], "/")
}

// ObjectKey builds a unique key for a file uploaded by userID, keeping the
// original extension.
func ObjectKey(userID uint, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("posts/%d/%s%s", userID, uuid.New().String(), ext)
}
