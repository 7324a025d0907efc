package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
)

// Bucket serves documents from a Cloud Storage bucket below an optional prefix.
type Bucket struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewBucket constructs a Cloud Storage source using application default credentials.
func NewBucket(ctx context.Context, bucket, prefix string) (*Bucket, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: storage client: %w", err)
	}
	return &Bucket{client: client, bucket: bucket, prefix: prefix}, nil
}

// Open streams the object at prefix/name.
func (b *Bucket) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	object := b.objectName(clean)
	r, err := b.client.Bucket(b.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("source: gs://%s/%s: %w", b.bucket, object, ErrNotExist)
		}
		return nil, fmt.Errorf("source: gs://%s/%s: %w", b.bucket, object, err)
	}
	return r, nil
}

func (b *Bucket) objectName(name string) string {
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

// Close releases the storage client.
func (b *Bucket) Close() error { return b.client.Close() }

func (b *Bucket) String() string {
	if b.prefix == "" {
		return "gs://" + b.bucket
	}
	return "gs://" + b.bucket + "/" + b.prefix
}
