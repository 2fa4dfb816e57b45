package files

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the slice of the S3 client the storage layer uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Storage writes uploads to the public bucket under deterministic keys and
// builds their public URLs.
type Storage struct {
	client S3API
	bucket string
	base   string
	now    func() time.Time
}

func NewStorage(client S3API, bucket, publicBaseURL string) *Storage {
	return &Storage{
		client: client,
		bucket: bucket,
		base:   publicBaseURL,
		now:    time.Now,
	}
}

// ThumbnailKey is the object key for a user's profile thumbnail.
func ThumbnailKey(userID, filename string) string {
	return fmt.Sprintf("userData-thumbnails/%s/%s", userID, filename)
}

// ProjectUploadKey is the object key for a project upload.
func ProjectUploadKey(projectID, filename string) string {
	return fmt.Sprintf("projects/%s/uploads/%s", projectID, filename)
}

// UploadThumbnail stores a user thumbnail and returns its public URL.
func (s *Storage) UploadThumbnail(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, error) {
	return s.put(ctx, ThumbnailKey(userID, filename), contentType, body)
}

// UploadProjectFile stores a project upload and returns its public URL.
func (s *Storage) UploadProjectFile(ctx context.Context, projectID, filename, contentType string, body io.Reader) (string, error) {
	return s.put(ctx, ProjectUploadKey(projectID, filename), contentType, body)
}

func (s *Storage) put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// PublicURL builds the public URL for a stored key with a cache-busting
// timestamp, since browsers otherwise hold on to replaced thumbnails.
func (s *Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s?t=%d", s.base, key, s.now().Unix())
}
