package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/vidtube/vidtube/internal/logging"
)

type S3Config struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	PublicURL    string
}

// S3Store pushes locally spooled media files into an S3-compatible bucket
// (MinIO in development, S3 proper in production).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.BaseEndpoint
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload pushes the file at localPath and removes it from local storage
// afterwards, on failure as well as on success. An empty localPath is a
// no-op.
func (s *S3Store) Upload(ctx context.Context, localPath string) (*Object, error) {
	if localPath == "" {
		return nil, nil
	}
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	key := objectKey(localPath)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	obj := &Object{Key: key, URL: s.objectURL(key)}
	logging.FromContext(ctx).Info("media uploaded", "key", key, "url", obj.URL)
	return obj, nil
}

// Delete removes an object by key or by public URL. A failed delete is
// reported to the caller as false; it decides whether that is fatal.
func (s *S3Store) Delete(ctx context.Context, ref string) bool {
	key := s.keyFromRef(ref)
	if key == "" {
		return false
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logging.FromContext(ctx).Warn("media delete failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *S3Store) objectURL(key string) string {
	return s.publicURL + "/" + s.bucket + "/" + key
}

// keyFromRef accepts either a bare object key or a URL produced by
// objectURL and reduces it to the key.
func (s *S3Store) keyFromRef(ref string) string {
	if ref == "" {
		return ""
	}
	prefix := s.publicURL + "/" + s.bucket + "/"
	if strings.HasPrefix(ref, prefix) {
		return strings.TrimPrefix(ref, prefix)
	}
	if strings.Contains(ref, "://") {
		// URL from a different base; key is whatever follows the bucket.
		if i := strings.Index(ref, "/"+s.bucket+"/"); i >= 0 {
			return ref[i+len(s.bucket)+2:]
		}
		return ""
	}
	return ref
}

func objectKey(localPath string) string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%02d/%02d/%s%s",
		d.Year(), int(d.Month()), d.Day(), uuid.NewString(), filepath.Ext(localPath))
}

func contentType(localPath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
