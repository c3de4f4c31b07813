// Package objectstore publishes exported project trees to S3-compatible
// object storage.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/JonMunkholm/csvtree/internal/config"
	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/JonMunkholm/csvtree/internal/export"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const contentType = "application/json"

// Sink uploads cc.json documents to one bucket. It implements core.ExportSink.
type Sink struct {
	client *minio.Client
	bucket string
	region string

	mu    sync.Mutex
	ready bool // bucket known to exist
}

var _ core.ExportSink = (*Sink)(nil)

// NewSink validates cfg and creates the client. No request is made until the
// first upload.
func NewSink(cfg config.ExportConfig) (*Sink, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &Sink{client: client, bucket: bucket, region: region}, nil
}

// Bucket returns the target bucket name.
func (s *Sink) Bucket() string { return s.bucket }

// ensureBucket creates the bucket on first use. A failed attempt is retried
// on the next upload.
func (s *Sink) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return err
		}
	}
	s.ready = true
	return nil
}

// PutProject uploads p as a cc.json document under key and returns its
// s3:// location.
func (s *Sink) PutProject(ctx context.Context, key string, p *core.Project) (string, error) {
	key = ObjectKey(key)
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	data, err := export.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode project: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return Location(s.bucket, key), nil
}

// GetProject downloads and decodes the document stored under key.
func (s *Sink) GetProject(ctx context.Context, key string, pathSeparator rune) (*core.Project, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ObjectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	p, err := export.Decode(obj, pathSeparator)
	if err != nil {
		var errResp minio.ErrorResponse
		if errors.As(err, &errResp) && (errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket") {
			return nil, core.ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// ObjectKey normalizes a caller-supplied key.
func ObjectKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}

// Location renders bucket and key as an s3:// URL.
func Location(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
