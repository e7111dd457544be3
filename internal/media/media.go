// Package media issues time-limited presigned links for direct-to-storage
// uploads and reads. File bytes never pass through this service.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// linkTTL bounds how long an issued upload or read link stays valid.
const linkTTL = 15 * time.Minute

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// bucketClient and presignClient are interfaces for testability.
type bucketClient interface {
	CreateBucket(ctx context.Context, input *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

type presignClient interface {
	PresignPutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Links is a pair of scoped URLs for one fresh object: PUT-only for the
// upload, GET-only for reading it back once uploaded.
type Links struct {
	UploadURL string    `json:"upload_url"`
	ReadURL   string    `json:"read_url"`
	ObjectKey string    `json:"object_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service builds presigned links against one bucket.
type Service struct {
	bucket    string
	region    string
	client    bucketClient
	presigner presignClient
}

// NewService returns a configured service, or nil when the storage settings
// are incomplete. Callers treat a nil service as "media disabled".
func NewService(cfg Config) *Service {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil
	}
	client := newS3Client(cfg)
	return &Service{
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		client:    client,
		presigner: s3.NewPresignClient(client),
	}
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// EnsureBucket creates the bucket if absent. Already-exists responses are
// swallowed, so concurrent or repeated calls are safe.
func (s *Service) EnsureBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	_, err := s.client.CreateBucket(ctx, input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// BuildUploadLinks presigns a PUT and a GET for a fresh, globally-unique
// object named after the space, the current time, a random id, and a
// sanitized version of the caller's file name.
func (s *Service) BuildUploadLinks(ctx context.Context, spaceID, fileName, contentType string) (*Links, error) {
	key := fmt.Sprintf("%s/%d_%s_%s", spaceID, time.Now().UnixMilli(), uuid.NewString(), sanitizeFileName(fileName))
	expiresAt := time.Now().UTC().Add(linkTTL)

	put, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(linkTTL))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	get, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(linkTTL))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	return &Links{
		UploadURL: put.URL,
		ReadURL:   get.URL,
		ObjectKey: key,
		ExpiresAt: expiresAt,
	}, nil
}

// sanitizeFileName replaces everything outside [a-zA-Z0-9._-] with an
// underscore so the original name survives inside the object key.
func sanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
