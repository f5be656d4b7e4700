package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrObjectNotFound   = errors.New("object not found")
	ErrInvalidKey       = errors.New("invalid object key")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// Accepted image types and the key extension each is stored under.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage sniffs the leading bytes of r. It returns the detected image
// type and a reader that still yields the whole stream.
func DetectImage(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := imageExtensions[contentType]; !ok {
		return "", nil, ErrUnsupportedImage
	}
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}

// imageContentType maps a key back to its image type. Anything else is served
// as an opaque download.
func imageContentType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	for contentType, e := range imageExtensions {
		if e == ext {
			return contentType
		}
	}
	return "application/octet-stream"
}

// ImageStore holds product images addressed by slash separated keys.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, keys ...string) error
}

// ImageKey names a new object for an image of productID. The extension comes
// from the detected content type, never from the client's filename.
func ImageKey(productID int, contentType string) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedImage
	}
	return fmt.Sprintf("products/%d/%s%s", productID, uuid.NewString(), ext), nil
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// S3Store keeps images in an S3-compatible bucket.
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewS3Store creates a new S3 backed image store
func NewS3Store(endpoint, accessKey, secretKey, bucketName, region string, useSSL bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &S3Store{
		client:     client,
		bucketName: bucketName,
		region:     region,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{
			Region: s.region,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, s.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, "", err
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object: %w", err)
	}

	// GetObject is lazy; Stat surfaces a missing key.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, info.ContentType, nil
}

func (s *S3Store) Delete(ctx context.Context, keys ...string) error {
	objectsCh := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsCh)
		for _, key := range keys {
			select {
			case objectsCh <- minio.ObjectInfo{Key: key}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var errs []error
	for err := range s.client.RemoveObjects(ctx, s.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			errs = append(errs, fmt.Errorf("failed to delete object %s: %w", err.ObjectName, err.Err))
		}
	}

	return errors.Join(errs...)
}

// LocalStore keeps images on the local filesystem under root.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return f.Close()
}

func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", err
	}

	return f, imageContentType(key), nil
}

func (s *LocalStore) Delete(_ context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		p, err := s.path(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
