package qrcode

import (
	"context"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
)

// Sink stores a rendered image and returns the URL it is served from.
type Sink interface {
	Put(ctx context.Context, clientID string, png []byte) (string, error)
}

// BucketSink writes images to a Cloud Storage bucket under qrcodes/.
type BucketSink struct {
	client *storage.Client
	bucket string
}

func NewBucketSink(client *storage.Client, bucket string) *BucketSink {
	return &BucketSink{client: client, bucket: bucket}
}

func ObjectName(clientID string) string {
	return "qrcodes/" + clientID + ".png"
}

func (s *BucketSink) Put(ctx context.Context, clientID string, png []byte) (string, error) {
	name := ObjectName(clientID)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "image/png"
	w.CacheControl = "public, max-age=86400"

	if _, err := w.Write(png); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return PublicURL(s.bucket, name), nil
}

func PublicURL(bucket, object string) string {
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + object}
	return u.String()
}
