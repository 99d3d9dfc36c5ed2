package filestorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/yigit/uniadmin/internal/pkg/logger"
)

// S3Config holds configuration for an S3 compatible bucket
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, set for Spaces, MinIO and friends
	AccessKey string
	SecretKey string
	PublicURL string // CDN or bucket URL prefix; derived when empty
}

// S3Storage stores files in an S3 compatible bucket
type S3Storage struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

// NewS3Storage creates an S3 session from cfg
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}

	return NewS3StorageWithClient(s3.New(sess), cfg), nil
}

// NewS3StorageWithClient wraps an existing client
func NewS3StorageWithClient(client s3iface.S3API, cfg S3Config) *S3Storage {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Save uploads data below dir
func (s *S3Storage) Save(ctx context.Context, dir, originalName string, data []byte, contentType string) (string, error) {
	key := newKey(dir, originalName)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to upload file to s3")
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	logger.Info().Str("filename", originalName).Str("key", key).Msg("File uploaded to s3")
	return key, nil
}

// Delete removes an object. S3 deletes are idempotent already.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	cleaned, ok := cleanKey(key)
	if !ok {
		return fmt.Errorf("invalid file key: %q", key)
	}

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public object URL
func (s *S3Storage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}
