package media

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"blogicum/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 keeps objects in an S3-compatible bucket and serves them through
// presigned GET redirects.
type S3 struct {
	bucket     string
	presignTTL time.Duration
	client     *minio.Client
}

func NewS3(cfg config.S3Config, presignTTL time.Duration) (*S3, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return &S3{bucket: cfg.Bucket, presignTTL: presignTTL, client: client}, nil
}

func (s *S3) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *S3) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if _, err := CleanKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *S3) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *S3) ServeObject(w http.ResponseWriter, r *http.Request, key string) {
	if _, err := CleanKey(key); err != nil {
		http.NotFound(w, r)
		return
	}

	u, err := s.client.PresignedGetObject(r.Context(), s.bucket, key, s.presignTTL, nil)
	if err != nil {
		log.Printf("Failed to presign %s: %v", key, err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, u.String(), http.StatusFound)
}
