package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"techshop_back_end/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const MaxImageSize = 5 << 20

var (
	ErrStorageDisabled   = errors.New("image storage not configured")
	ErrUnsupportedImage  = errors.New("unsupported image type")
	ErrImageTooLarge     = errors.New("image too large")
	ErrInvalidImageGroup = errors.New("invalid image folder")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageFolders are the admin screens that upload images.
var ImageFolders = map[string]bool{"products": true, "categories": true, "banners": true, "settings": true}

// ImageStore puts admin uploads in a MinIO bucket and returns their public URL.
type ImageStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewImageStore(client *minio.Client, cfg *config.Config) *ImageStore {
	scheme := "http"
	if cfg.MinIOUseSSL {
		scheme = "https"
	}
	return &ImageStore{
		client:  client,
		bucket:  cfg.MinIOBucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.MinIOEndpoint, cfg.MinIOBucket),
	}
}

// ObjectName picks a collision-free key, keeping the folder and a canonical extension.
func ObjectName(folder, contentType string) (string, error) {
	if !ImageFolders[folder] {
		return "", ErrInvalidImageGroup
	}
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedImage
	}
	return path.Join(folder, uuid.NewString()+ext), nil
}

func (s *ImageStore) Upload(ctx context.Context, folder string, r io.Reader, size int64, contentType string) (string, error) {
	if s.client == nil {
		return "", ErrStorageDisabled
	}
	if size > MaxImageSize {
		return "", ErrImageTooLarge
	}
	name, err := ObjectName(folder, contentType)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	log.Printf("🖼️ Image uploaded: %s", name)
	return s.URL(name), nil
}

// Remove deletes an object given its public URL; URLs outside the bucket are ignored.
func (s *ImageStore) Remove(ctx context.Context, url string) error {
	if s.client == nil {
		return ErrStorageDisabled
	}
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
}

func (s *ImageStore) URL(name string) string {
	return s.baseURL + "/" + name
}
