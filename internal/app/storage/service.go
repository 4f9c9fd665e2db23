/*
Package storage provides the object storage service used for player-uploaded
custom avatars, backed by any S3-compatible endpoint.
*/
package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage backend.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service defines the public interface of the avatar storage service.
type Service interface {
	// PresignUpload generates a pre-signed URL for uploading an avatar image.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for fetching an avatar image.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the object identified by key.
	Delete(ctx context.Context, key string) error
}

// NewService is the factory for Service. Only S3-compatible backends are
// currently supported.
func NewService(cfg ServiceConfig) (Service, error) {
	return newS3Client(cfg)
}
