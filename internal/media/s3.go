package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoStore keeps venue photos in S3-compatible object storage.
type PhotoStore struct {
	client *minio.Client
	bucket string
}

func NewPhotoStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*PhotoStore, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("missing object storage credentials")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}
	return &PhotoStore{client: client, bucket: bucket}, nil
}

// EnsureBucket creates the photo bucket if it does not exist yet.
func (p *PhotoStore) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	return p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{})
}

// Put stores one photo under the venue's key and returns the object key.
func (p *PhotoStore) Put(ctx context.Context, venueID, filename, contentType string, body io.Reader, size int64) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	key := photoKey(venueID, filename)
	_, err := p.client.PutObject(ctx, p.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	return key, nil
}

// Get streams one photo back; the caller owns closing the reader.
func (p *PhotoStore) Get(ctx context.Context, venueID, filename string) (io.ReadCloser, error) {
	obj, err := p.client.GetObject(ctx, p.bucket, photoKey(venueID, filename), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return obj, nil
}

func photoKey(venueID, filename string) string {
	return fmt.Sprintf("venues/%s/%s", sanitize(venueID), sanitize(filename))
}

func sanitize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
}
