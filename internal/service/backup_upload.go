package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

// ObjectPutter is the part of the S3 client used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BackupUploader stores backups in an S3 bucket
type BackupUploader struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewBackupUploader creates an uploader using the default AWS credential chain
func NewBackupUploader(ctx context.Context, region, bucket, prefix string) (*BackupUploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &BackupUploader{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

// BackupKey names a backup object by its export time
func (u *BackupUploader) BackupKey(t time.Time) string {
	return path.Join(u.prefix, fmt.Sprintf("backup_%s.json", t.UTC().Format("20060102_150405")))
}

// Upload stores data under key and returns its s3:// location
func (u *BackupUploader) Upload(ctx context.Context, key string, data []byte) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup to S3: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	log.WithField("location", location).Info("Backup uploaded")
	return location, nil
}

// ExportAndUpload exports the database straight to the bucket
func (s *BackupService) ExportAndUpload(ctx context.Context, u *BackupUploader) (string, error) {
	var buf bytes.Buffer
	backup, err := s.Export(ctx, &buf)
	if err != nil {
		return "", err
	}
	return u.Upload(ctx, u.BackupKey(backup.ExportedAt), buf.Bytes())
}
