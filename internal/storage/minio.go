package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage implements Provider using a MinIO (or any S3-compatible) backend.
// The object key doubles as the public ID.
type MinioStorage struct {
	client     *minio.Client
	bucket     string
	folder     string
	publicBase string
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists with a public-read
// policy, and returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket, folder, publicBase string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStorage{
		client:     client,
		bucket:     bucket,
		folder:     folder,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Name implements Provider.
func (s *MinioStorage) Name() string { return "minio" }

// Upload streams the file under a fresh random key that keeps the original extension.
func (s *MinioStorage) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	key := objectKey(s.folder, in.Filename)
	size := in.Size
	if size <= 0 {
		size = -1
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, in.Reader, size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return nil, &Error{Provider: s.Name(), Op: "upload", Message: minioMessage(err), Err: err}
	}

	return &UploadResult{
		PublicID:     key,
		URL:          s.publicURL(key),
		Format:       formatOf(in.Filename),
		ResourceType: in.ResourceType,
		Bytes:        info.Size,
	}, nil
}

// Delete removes the object at publicID from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, publicID string, _ ResourceType) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return &Error{Provider: s.Name(), Op: "destroy", Message: minioMessage(err), Err: err}
	}
	return nil
}

// publicURL returns the browser-accessible URL for the given key.
func (s *MinioStorage) publicURL(key string) string {
	return s.publicBase + "/" + key
}

func objectKey(folder, filename string) string {
	return path.Join(folder, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

// formatOf returns the lower-case extension without its dot.
func formatOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func minioMessage(err error) string {
	if resp := minio.ToErrorResponse(err); resp.Message != "" {
		return resp.Message
	}
	return err.Error()
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
