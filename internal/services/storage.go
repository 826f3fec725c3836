package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chachabrian/staybook-backend/internal/config"
)

// PhotoStore saves uploaded listing photos and returns their public URL.
type PhotoStore interface {
	Save(ctx context.Context, folder, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// NewPhotoStore picks S3 when credentials and a bucket are configured and
// falls back to the local upload directory otherwise.
func NewPhotoStore(cfg *config.Config, log logrus.FieldLogger) (PhotoStore, error) {
	if cfg.UseS3() {
		store, err := NewS3PhotoStore(cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.S3Bucket)
		if err != nil {
			return nil, err
		}
		log.WithField("bucket", cfg.S3Bucket).Info("AWS S3 storage initialized")
		return store, nil
	}

	store, err := NewLocalPhotoStore(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	log.WithField("dir", cfg.UploadDir).Warn("AWS S3 not configured, using local file storage")
	return store, nil
}

type S3PhotoStore struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	region   string
}

func NewS3PhotoStore(region, accessKey, secretKey, bucket string) (*S3PhotoStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3PhotoStore{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
		region:   region,
	}, nil
}

func (s *S3PhotoStore) baseURL() string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
}

func (s *S3PhotoStore) Save(ctx context.Context, folder, name, contentType string, data []byte) (string, error) {
	key := folder + "/" + name
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.baseURL() + key, nil
}

func (s *S3PhotoStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL())
	if !ok {
		return fmt.Errorf("%q is not an object of bucket %s", url, s.bucket)
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// LocalPhotoStore writes under dir and serves files from baseURL/uploads.
type LocalPhotoStore struct {
	dir     string
	baseURL string
}

func NewLocalPhotoStore(dir, baseURL string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, "houses"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalPhotoStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalPhotoStore) Dir() string {
	return s.dir
}

// Save writes to a temporary file first so readers never see a partial photo.
func (s *LocalPhotoStore) Save(_ context.Context, folder, name, _ string, data []byte) (string, error) {
	folderPath := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}

	tmp := filepath.Join(folderPath, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(folderPath, name)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, folder, name), nil
}

func (s *LocalPhotoStore) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/uploads/")
	if !ok || strings.Contains(rel, "..") {
		return fmt.Errorf("%q is not a local upload", url)
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
