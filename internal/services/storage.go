package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/rebecca-roussel/ecoride/internal/apperr"
	"github.com/rebecca-roussel/ecoride/internal/config"
	"github.com/rebecca-roussel/ecoride/pkg/logger"
)

const profileFolder = "profiles"

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoStorage keeps profile photos in S3 when AWS credentials are
// configured and in the local upload directory otherwise.
type PhotoStorage struct {
	s3Client  *s3.S3
	uploader  *s3manager.Uploader
	bucket    string
	region    string
	uploadDir string
	baseURL   string
	maxSize   int64
}

func NewPhotoStorage(cfg *config.StorageConfig, baseURL string, log *logger.Logger) (*PhotoStorage, error) {
	storage := &PhotoStorage{
		bucket:    cfg.Bucket,
		region:    cfg.AWSRegion,
		uploadDir: cfg.UploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxSize:   cfg.MaxPhotoSize,
	}

	if cfg.AWSRegion != "" && cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" && cfg.Bucket != "" {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		storage.s3Client = s3.New(sess)
		storage.uploader = s3manager.NewUploader(sess)
		log.WithField("bucket", cfg.Bucket).Info("AWS S3 storage initialized")
		return storage, nil
	}

	if err := os.MkdirAll(filepath.Join(cfg.UploadDir, profileFolder), 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	log.WithField("dir", cfg.UploadDir).Warn("AWS S3 not configured, using local file storage")
	return storage, nil
}

func (p *PhotoStorage) UsesS3() bool {
	return p.uploader != nil
}

// SaveProfilePhoto checks size and content type, then stores the photo
// under a random name.
func (p *PhotoStorage) SaveProfilePhoto(ctx context.Context, userID uint, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.Invalid("photo", "photo is required")
	}
	if p.maxSize > 0 && int64(len(data)) > p.maxSize {
		return "", apperr.Invalid("photo", fmt.Sprintf("photo must be at most %d bytes", p.maxSize))
	}
	contentType := http.DetectContentType(data)
	ext, ok := photoExtensions[contentType]
	if !ok {
		return "", apperr.Invalid("photo", "photo must be a JPEG, PNG or WebP image")
	}

	key := path.Join(profileFolder, fmt.Sprintf("%d", userID), uuid.NewString()+ext)
	if p.UsesS3() {
		return p.uploadToS3(ctx, key, contentType, data)
	}
	return p.saveLocally(key, data)
}

func (p *PhotoStorage) uploadToS3(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key), nil
}

func (p *PhotoStorage) saveLocally(key string, data []byte) (string, error) {
	filePath := filepath.Join(p.uploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s", p.baseURL, key), nil
}

// DeleteProfilePhoto removes a photo previously returned by
// SaveProfilePhoto. URLs this storage did not issue are ignored.
func (p *PhotoStorage) DeleteProfilePhoto(ctx context.Context, photoURL string) error {
	key, ok := p.keyFromURL(photoURL)
	if !ok {
		return nil
	}
	if p.UsesS3() {
		_, err := p.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		return err
	}
	err := os.Remove(filepath.Join(p.uploadDir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (p *PhotoStorage) keyFromURL(photoURL string) (string, bool) {
	u, err := url.Parse(photoURL)
	if err != nil {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, "/")
	if !p.UsesS3() {
		if !strings.HasPrefix(photoURL, p.baseURL+"/uploads/") {
			return "", false
		}
		key = strings.TrimPrefix(key, "uploads/")
	}
	key = path.Clean(key)
	if !strings.HasPrefix(key, profileFolder+"/") || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
