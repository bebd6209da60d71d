package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/melaka-ybbae/pnl-ai-sync/config"
	"github.com/melaka-ybbae/pnl-ai-sync/model"
)

const spreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MinioArchive keeps a copy of every raw ERP spreadsheet that was submitted.
type MinioArchive struct {
	client *minio.Client
	bucket string
	config *config.ArchiveConfig
	now    func() time.Time
}

func NewMinioArchive(cfg *config.ArchiveConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
		now:    time.Now,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (a *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Archive stores the file and returns its object key.
func (a *MinioArchive) Archive(ctx context.Context, workspace string, category model.Category, file UploadFile) (string, error) {
	key := ObjectKey(workspace, category, file.Filename, a.now())
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(file.Content), int64(len(file.Content)), minio.PutObjectOptions{
		ContentType: contentTypeFor(file.Filename),
		UserMetadata: map[string]string{
			"category":  string(category),
			"workspace": workspace,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive file: %w", err)
	}
	return key, nil
}

// PresignedURL generates a download link valid for the configured number of days.
func (a *MinioArchive) PresignedURL(ctx context.Context, key string) (string, error) {
	expiry := time.Duration(a.config.ExpireDays) * 24 * time.Hour
	url, err := a.client.PresignedGetObject(ctx, a.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// ObjectKey lays objects out as workspace/yyyy/mm/dd/category/<id>_<name>.
func ObjectKey(workspace string, category model.Category, filename string, at time.Time) string {
	name := strings.ReplaceAll(path.Base(filename), " ", "_")
	return path.Join(
		workspace,
		at.Format("2006/01/02"),
		string(category),
		uuid.NewString()+"_"+name,
	)
}

func contentTypeFor(filename string) string {
	if strings.HasSuffix(strings.ToLower(filename), ".xls") {
		return "application/vnd.ms-excel"
	}
	return spreadsheetContentType
}
