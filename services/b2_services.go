package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/kurin/blazer/b2"
)

type B2Service struct {
	client     *b2.Client
	bucketName string
	bucket     *b2.Bucket
}

type UploadResult struct {
	ObjectName string
	Size       int64
	SHA1       string
}

// PreviewURLDuration is how long signed artifact links stay valid.
const PreviewURLDuration = 1 * time.Hour

func NewB2Service(ctx context.Context, keyID, applicationKey, bucketName string) (*B2Service, error) {
	client, err := b2.NewClient(ctx, keyID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create B2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &B2Service{
		client:     client,
		bucketName: bucketName,
		bucket:     bucket,
	}, nil
}

// Upload streams r to objectName, hashing on the way.
func (s *B2Service) Upload(ctx context.Context, objectName string, r io.Reader) (*UploadResult, error) {
	writer := s.bucket.Object(objectName).NewWriter(ctx)

	hasher := sha1.New()
	counter := &countingWriter{}
	multiWriter := io.MultiWriter(writer, hasher, counter)

	if _, err := io.Copy(multiWriter, r); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to upload %s to B2: %w", objectName, err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close B2 writer: %w", err)
	}

	return &UploadResult{
		ObjectName: objectName,
		Size:       counter.n,
		SHA1:       hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *B2Service) Delete(ctx context.Context, objectName string) error {
	if err := s.bucket.Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s from B2: %w", objectName, err)
	}
	return nil
}

// SignedURL generates a time-limited GET url for a private bucket.
func (s *B2Service) SignedURL(ctx context.Context, objectName string, duration time.Duration) (string, error) {
	urlObj, err := s.bucket.Object(objectName).AuthURL(ctx, duration, "")
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return urlObj.String(), nil
}

// PrefixSize sums the size of every object under prefix, paging through the listing.
func (s *B2Service) PrefixSize(ctx context.Context, prefix string) (int64, error) {
	listPrefix := strings.TrimSuffix(prefix, "/") + "/"

	var total int64
	iter := s.bucket.List(ctx, b2.ListPrefix(listPrefix))
	for iter.Next() {
		attrs, err := iter.Object().Attrs(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to read attributes under %s: %w", listPrefix, err)
		}
		total += attrs.Size
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", listPrefix, err)
	}
	return total, nil
}

// ObjectName builds "<prefix>/<courseId>/<unix>-<file>", or "<prefix>/<unix>-<file>"
// when courseID is empty.
func ObjectName(prefix, courseID, filename string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	dir := strings.TrimSuffix(prefix, "/")
	if courseID != "" {
		dir += "/" + courseID
	}
	return fmt.Sprintf("%s/%d-%s", dir, now.Unix(), base)
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
