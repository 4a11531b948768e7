// Package storage handles the audio recording objects behind practice
// sessions. The database keeps only metadata (recording_files rows); the
// bytes live in an S3-compatible bucket — MinIO locally, S3 in production.
//
// Uploads and downloads never pass through this server. We hand the
// client a presigned URL and it talks to object storage directly, so a
// 50MB recording doesn't occupy an API worker for its whole transfer.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"
)

// presignTTL bounds how long an issued URL stays usable. Long enough for
// a slow mobile upload, short enough that a leaked URL goes stale fast.
const presignTTL = 15 * time.Minute

// Config holds the object storage settings, read once at process start.
// Endpoint is empty for real AWS S3; set it for MinIO or other
// S3-compatible servers.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// RecordingStorage issues presigned upload/download URLs for recordings.
type RecordingStorage struct {
	presign *s3.PresignClient
	bucket  string
}

// New builds the S3 client and its presign wrapper.
//
// UsePathStyle puts the bucket in the URL path (endpoint/bucket/key)
// instead of the hostname (bucket.endpoint/key) — virtual-host addressing
// doesn't work against a MinIO instance on localhost.
func New(ctx context.Context, cfg Config) (*RecordingStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket must be configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &RecordingStorage{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// NewObjectKey returns a fresh storage key for a recording. Keys are
// namespaced by user and session so bucket listings stay navigable, with
// an xid suffix to keep each upload unique.
func (s *RecordingStorage) NewObjectKey(userID, sessionID int64) string {
	return fmt.Sprintf("recordings/%d/%d/%s", userID, sessionID, xid.New().String())
}

// PresignUpload returns a URL the client can PUT the recording bytes to.
func (s *RecordingStorage) PresignUpload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("storage: presigning upload for %s: %w", key, err)
	}
	return req.URL, nil
}

// PresignDownload returns a URL the client can GET the recording from.
func (s *RecordingStorage) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("storage: presigning download for %s: %w", key, err)
	}
	return req.URL, nil
}
