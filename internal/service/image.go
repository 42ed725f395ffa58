package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/pageza/snapfeed/backend/config"
	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/types"
	"gorm.io/gorm"
)

// DefaultMaxImageBytes is the upload limit when none is configured.
const DefaultMaxImageBytes = 10 << 20

// allowedImageTypes maps sniffed content types to file extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore persists image bytes under opaque keys.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// URLSigner is implemented by stores that can hand out temporary direct
// download links.
type URLSigner interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ImageService validates uploads and stores them through an ImageStore
type ImageService struct {
	store    ImageStore
	maxBytes int64
}

// Ensure ImageService implements IImageService
var _ IImageService = (*ImageService)(nil)

// NewImageService creates a new ImageService instance
func NewImageService(store ImageStore, maxBytes int64) *ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &ImageService{store: store, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload.
func (s *ImageService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload checks that the data is a supported image and stores it under
// "<prefix>/<uuid><ext>". The returned key is what models reference.
func (s *ImageService) Upload(ctx context.Context, prefix string, upload *types.ImageUpload) (string, error) {
	field := "image"
	if prefix == profilePicturePath {
		field = "picture"
	}

	if len(upload.Data) == 0 {
		return "", fieldError(field, "The submitted file is empty.")
	}
	if int64(len(upload.Data)) > s.maxBytes {
		return "", fieldError(field, fmt.Sprintf("Images may be at most %.1f MB.", float64(s.maxBytes)/(1<<20)))
	}

	contentType := http.DetectContentType(upload.Data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fieldError(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	key := fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.NewString(), ext)
	if err := s.store.Put(ctx, key, contentType, upload.Data); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	log.Printf("[ImageService] Stored %s (%s, %d bytes) from %q", key, contentType, len(upload.Data), upload.Filename)
	return key, nil
}

// Open returns the bytes and content type stored under key.
func (s *ImageService) Open(ctx context.Context, key string) ([]byte, string, error) {
	if key == "" || strings.Contains(key, "..") {
		return nil, "", ErrNotFound
	}
	return s.store.Get(ctx, key)
}

// URL returns a direct download link when the store supports one.
func (s *ImageService) URL(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	signer, ok := s.store.(URLSigner)
	if !ok {
		return "", false, nil
	}
	url, err := signer.PresignedURL(ctx, key, ttl)
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

// Delete removes an image. Failures are logged, not returned.
func (s *ImageService) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		log.Printf("[ImageService] Failed to delete %s: %v", key, err)
	}
}

// S3Store keeps images in an S3 bucket
type S3Store struct {
	s3Config *config.S3Config
}

// Ensure S3Store implements ImageStore and URLSigner
var (
	_ ImageStore = (*S3Store)(nil)
	_ URLSigner  = (*S3Store)(nil)
)

func NewS3Store(s3Config *config.S3Config) *S3Store {
	return &S3Store{s3Config: s3Config}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.s3Config.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to download from S3: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read S3 object: %w", err)
	}
	return data, aws.ToString(out.ContentType), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3Store) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.s3Config.GeneratePresignedURL(ctx, key, ttl)
}

// DBStore keeps images in the images table
type DBStore struct {
	db *gorm.DB
}

// Ensure DBStore implements ImageStore
var _ ImageStore = (*DBStore)(nil)

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	img := &models.Image{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	return s.db.WithContext(ctx).Create(img).Error
}

func (s *DBStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	var img models.Image
	if err := s.db.WithContext(ctx).Where(&models.Image{Key: key}).First(&img).Error; err != nil {
		return nil, "", translate(err)
	}
	return img.Data, img.ContentType, nil
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&models.Image{Key: key}).Error
}
