package gcp

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Bucket wraps a GCS bucket handle with the operations the pipeline needs:
// storing encoded images, reading OCR output objects, and minting signed
// read URLs for the web tier.
type Bucket struct {
	name   string
	client *storage.Client
	handle *storage.BucketHandle
}

// NewBucket creates a storage client and returns a handle for bucketName.
func NewBucket(ctx context.Context, bucketName string) (*Bucket, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucketName must be provided")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Bucket{
		name:   bucketName,
		client: client,
		handle: client.Bucket(bucketName),
	}, nil
}

// Name returns the bucket name.
func (b *Bucket) Name() string {
	return b.name
}

// URI returns the gs:// reference for an object in this bucket.
func (b *Bucket) URI(objectName string) string {
	return fmt.Sprintf("gs://%s/%s", b.name, objectName)
}

// Put writes data to the named object, overwriting any existing content.
// Same-key writes are idempotent overwrites.
func (b *Bucket) Put(ctx context.Context, objectName string, data []byte) error {
	writer := b.handle.Object(objectName).NewWriter(ctx)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize write of object %s: %w", objectName, err)
	}
	return nil
}

// Read returns the full content of the named object.
func (b *Bucket) Read(ctx context.Context, objectName string) ([]byte, error) {
	reader, err := b.handle.Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", objectName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", objectName, err)
	}
	return data, nil
}

// ReadPrefix reads every object under the given prefix, in lexical name
// order, and returns their contents.
func (b *Bucket) ReadPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	it := b.handle.Objects(ctx, &storage.Query{Prefix: prefix})

	var objectNames []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		objectNames = append(objectNames, attrs.Name)
	}
	sort.Strings(objectNames)

	contents := make([][]byte, 0, len(objectNames))
	for _, name := range objectNames {
		data, err := b.Read(ctx, name)
		if err != nil {
			return nil, err
		}
		contents = append(contents, data)
	}
	return contents, nil
}

// SignedURL returns a time-limited, credential-free read link for the
// named object.
func (b *Bucket) SignedURL(objectName string, ttl time.Duration) (string, error) {
	url, err := b.handle.SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for object %s: %w", objectName, err)
	}
	return url, nil
}

// Close releases the underlying storage client.
func (b *Bucket) Close() error {
	return b.client.Close()
}
