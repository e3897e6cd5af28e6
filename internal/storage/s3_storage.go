package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appconfig "github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/pkg/logger"
)

const reportFolder = "reports"

// objectPutter is the part of *s3.Client the archive needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage archives exported reports in a bucket.
type S3Storage struct {
	client  objectPutter
	bucket  string
	region  string
	baseURL string
}

func NewS3Storage(cfg appconfig.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		// environment, shared config or instance role
		awsCfg, err = config.LoadDefaultConfig(context.Background(), config.WithRegion(cfg.Region))
		if err != nil {
			logger.Warn("Failed to load default AWS config, using region only", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	return newS3Storage(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Region, cfg.BaseURL)
}

func newS3Storage(client objectPutter, bucket, region, baseURL string) *S3Storage {
	return &S3Storage{
		client:  client,
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Archive uploads body under reports/<uuid>.<ext> and returns its URL.
func (s *S3Storage) Archive(ctx context.Context, body []byte, ext, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s.%s", reportFolder, uuid.New().String(), strings.TrimPrefix(ext, "."))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("Failed to upload report", err, map[string]interface{}{
			"bucket": s.bucket,
			"key":    key,
		})
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	logger.Info("Report archived", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
		"size":   len(body),
	})
	return s.objectURL(key), nil
}

func (s *S3Storage) objectURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
