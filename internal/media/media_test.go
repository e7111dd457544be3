package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakePresigner struct {
	putKey string
	getKey string
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.putKey = *input.Key
	return &v4.PresignedHTTPRequest{URL: "https://storage.example/put/" + *input.Key}, nil
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.getKey = *input.Key
	return &v4.PresignedHTTPRequest{URL: "https://storage.example/get/" + *input.Key}, nil
}

type fakeBucketClient struct {
	calls int
	err   error
}

func (f *fakeBucketClient) CreateBucket(ctx context.Context, input *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &s3.CreateBucketOutput{}, nil
}

func TestNewServiceIncompleteConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"no bucket", Config{AccessKey: "ak", SecretKey: "sk"}},
		{"no access key", Config{Bucket: "b", SecretKey: "sk"}},
		{"no secret key", Config{Bucket: "b", AccessKey: "ak"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if svc := NewService(tt.cfg); svc != nil {
				t.Error("expected nil service for incomplete config")
			}
		})
	}
}

func TestNewServiceComplete(t *testing.T) {
	svc := NewService(Config{
		Endpoint:  "http://localhost:9000",
		Bucket:    "media",
		Region:    "us-east-1",
		AccessKey: "ak",
		SecretKey: "sk",
	})
	if svc == nil {
		t.Fatal("expected a service for complete config")
	}
}

func TestBuildUploadLinks(t *testing.T) {
	presigner := &fakePresigner{}
	svc := &Service{bucket: "media", presigner: presigner}

	before := time.Now().UTC()
	links, err := svc.BuildUploadLinks(context.Background(), "space1", "family photo.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("build upload links: %v", err)
	}

	if !strings.HasPrefix(links.ObjectKey, "space1/") {
		t.Errorf("object key = %q, want space1/ prefix", links.ObjectKey)
	}
	if !strings.HasSuffix(links.ObjectKey, "_family_photo.jpg") {
		t.Errorf("object key = %q, want sanitized file name suffix", links.ObjectKey)
	}
	if presigner.putKey != links.ObjectKey || presigner.getKey != links.ObjectKey {
		t.Errorf("presigned keys put=%q get=%q, want both %q", presigner.putKey, presigner.getKey, links.ObjectKey)
	}
	if !strings.Contains(links.UploadURL, "/put/") {
		t.Errorf("upload url = %q, want put link", links.UploadURL)
	}
	if !strings.Contains(links.ReadURL, "/get/") {
		t.Errorf("read url = %q, want get link", links.ReadURL)
	}

	min := before.Add(linkTTL - time.Minute)
	max := before.Add(linkTTL + time.Minute)
	if links.ExpiresAt.Before(min) || links.ExpiresAt.After(max) {
		t.Errorf("expires at = %v, want about %v from now", links.ExpiresAt, linkTTL)
	}
}

func TestBuildUploadLinksUniqueKeys(t *testing.T) {
	svc := &Service{bucket: "media", presigner: &fakePresigner{}}

	a, err := svc.BuildUploadLinks(context.Background(), "space1", "x.png", "image/png")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := svc.BuildUploadLinks(context.Background(), "space1", "x.png", "image/png")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if a.ObjectKey == b.ObjectKey {
		t.Errorf("same key %q for two uploads of the same name", a.ObjectKey)
	}
}

func TestEnsureBucket(t *testing.T) {
	client := &fakeBucketClient{}
	svc := &Service{bucket: "media", client: client}

	if err := svc.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("ensure bucket: %v", err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
}

func TestEnsureBucketAlreadyExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"owned by you", &types.BucketAlreadyOwnedByYou{}},
		{"already exists", &types.BucketAlreadyExists{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &Service{bucket: "media", client: &fakeBucketClient{err: tt.err}}
			if err := svc.EnsureBucket(context.Background()); err != nil {
				t.Errorf("err = %v, want nil for existing bucket", err)
			}
		})
	}
}

func TestEnsureBucketOtherError(t *testing.T) {
	svc := &Service{bucket: "media", client: &fakeBucketClient{err: errors.New("connection refused")}}
	if err := svc.EnsureBucket(context.Background()); err == nil {
		t.Error("expected error to propagate")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"family photo.jpg", "family_photo.jpg"},
		{"receipt (1).pdf", "receipt__1_.pdf"},
		{"über.png", "_ber.png"},
		{"a/b\\c.txt", "a_b_c.txt"},
	}
	for _, tt := range tests {
		if got := sanitizeFileName(tt.in); got != tt.want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
