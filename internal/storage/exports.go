package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"microblog/internal/config"
)

// PresignTTL is how long a download link for an export archive stays valid.
const PresignTTL = 24 * time.Hour

// ExportStore uploads export archives to an S3-compatible bucket and hands
// back time-limited download links.
type ExportStore struct {
	s3Client *s3.Client
	presign  *s3.PresignClient
	bucket   string
}

// NewExportStore constructs an S3-compatible client for the export bucket.
// Returns an error when any of the four settings is missing; callers treat
// that as "no store" and fall back to attachment-only mail.
func NewExportStore(ctx context.Context, cfg *config.Config) (*ExportStore, error) {
	if cfg.ExportEndpoint == "" || cfg.ExportAccessKey == "" || cfg.ExportSecretKey == "" || cfg.ExportBucket == "" {
		return nil, fmt.Errorf("missing export storage configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.ExportAccessKey, cfg.ExportSecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for export storage: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.ExportEndpoint)
		o.UsePathStyle = true
	})

	return &ExportStore{
		s3Client: s3Client,
		presign:  s3.NewPresignClient(s3Client),
		bucket:   cfg.ExportBucket,
	}, nil
}

// Put uploads an archive under a per-user key and returns a presigned
// download URL valid for PresignTTL.
func (s *ExportStore) Put(ctx context.Context, userID int64, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("exports/%d/%s.json", userID, uuid.NewString())

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("[ExportStore] Put FAILED: key=%s err=%v", key, err)
		return "", fmt.Errorf("failed to upload export archive: %w", err)
	}

	presigned, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignTTL))
	if err != nil {
		log.Printf("[ExportStore] Presign FAILED: key=%s err=%v", key, err)
		return "", fmt.Errorf("failed to presign export archive: %w", err)
	}

	log.Printf("[ExportStore] Put OK: key=%s bytes=%d", key, len(data))
	return presigned.URL, nil
}
