package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSStore uploads images to a Cloud Storage bucket and returns their
// public URL.
type GCSStore struct {
	client     *storage.Client
	bucketName string
	uploadPath string
}

func NewGCSStore(ctx context.Context, bucketName, uploadPath, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client failed: %w", err)
	}
	if uploadPath != "" && !strings.HasSuffix(uploadPath, "/") {
		uploadPath += "/"
	}
	return &GCSStore{client: client, bucketName: bucketName, uploadPath: uploadPath}, nil
}

func (s *GCSStore) Save(ctx context.Context, data []byte) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 50*time.Second)
	defer cancel()

	objectPath := s.uploadPath + ObjectName(data)
	url := fmt.Sprintf("%s/%s/%s", gcsPublicHost, s.bucketName, objectPath)

	obj := s.client.Bucket(s.bucketName).Object(objectPath).If(storage.Conditions{DoesNotExist: true})
	wc := obj.NewWriter(ctx)
	wc.ContentType = "image/jpeg"
	wc.CacheControl = "public, max-age=31536000, immutable"
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", false, fmt.Errorf("write gcs object failed: %w", err)
	}
	if err := wc.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return url, false, nil
		}
		return "", false, fmt.Errorf("close gcs writer failed: %w", err)
	}
	return url, true, nil
}

func (s *GCSStore) Delete(ctx context.Context, ref string) error {
	base := fmt.Sprintf("%s/%s/", gcsPublicHost, s.bucketName)
	objectPath := strings.TrimPrefix(ref, base)
	if objectPath == ref || objectPath == "" {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	err := s.client.Bucket(s.bucketName).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs object failed: %w", err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
