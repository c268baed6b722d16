package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/config"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

var (
	// ErrObjectNotFound is returned when no object exists at a blob path
	ErrObjectNotFound = apperrors.NotFound("Storage.BlobNotFound", "blob not found")
	// ErrInvalidTTL is returned for non-positive URL lifetimes
	ErrInvalidTTL = apperrors.Validation("Storage.InvalidTTL", "url lifetime must be positive")
	// ErrInvalidPath is returned for empty blob paths
	ErrInvalidPath = apperrors.Validation("Storage.InvalidPath", "blob path is required")
)

const storageErrorCode = "Storage.BlobStorageError"

// ObjectAPI is the subset of the S3 client the storage uses
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner is the subset of the S3 presign client the storage uses
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage stores episode media in one bucket. Blob paths ("/17.mp4")
// map to keys under the configured prefix ("episodes/17.mp4").
type S3Storage struct {
	client        ObjectAPI
	presigner     Presigner
	bucket        string
	prefix        string
	region        string
	publicBaseURL string
	uploadTTL     time.Duration
	logger        *zap.Logger
}

// NewS3Storage builds the storage from the default AWS credential chain
func NewS3Storage(cfg *config.Config, logger *zap.Logger) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.ForcePathStyle
	})

	return NewS3StorageWithClients(client, s3.NewPresignClient(client), cfg.Storage, logger), nil
}

// NewS3StorageWithClients wires the storage to explicit clients
func NewS3StorageWithClients(client ObjectAPI, presigner Presigner, cfg config.StorageConfig, logger *zap.Logger) *S3Storage {
	return &S3Storage{
		client:        client,
		presigner:     presigner,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.KeyPrefix, "/"),
		region:        cfg.Region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		uploadTTL:     cfg.UploadURLTTL,
		logger:        logger.Named("storage"),
	}
}

// Key returns the object key of a blob path
func (s *S3Storage) Key(blobPath string) string {
	name := strings.TrimLeft(blobPath, "/")
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// GenerateUploadURL returns a presigned PUT url that lets a client create
// or overwrite the object and nothing else
func (s *S3Storage) GenerateUploadURL(ctx context.Context, blobPath, contentType string) (string, error) {
	if strings.Trim(blobPath, "/") == "" {
		return "", ErrInvalidPath
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(blobPath)),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return "", apperrors.Failure(storageErrorCode, "presign upload url", err)
	}
	return req.URL, nil
}

// GenerateReadURL returns a presigned GET url valid for ttl. The object
// must exist.
func (s *S3Storage) GenerateReadURL(ctx context.Context, blobPath string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}
	exists, err := s.Exists(ctx, blobPath)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrObjectNotFound.WithMessage("blob %s not found", blobPath)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(blobPath)),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperrors.Failure(storageErrorCode, "presign read url", err)
	}
	return req.URL, nil
}

// GetPublicURL returns the unsigned url of a blob
func (s *S3Storage) GetPublicURL(blobPath string) string {
	key := (&url.URL{Path: s.Key(blobPath)}).EscapedPath()
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// Exists reports whether the blob is stored
func (s *S3Storage) Exists(ctx context.Context, blobPath string) (bool, error) {
	if strings.Trim(blobPath, "/") == "" {
		return false, ErrInvalidPath
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(blobPath)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, apperrors.Failure(storageErrorCode, "head object", err)
}

// Delete removes the blob. A missing blob is not an error.
func (s *S3Storage) Delete(ctx context.Context, blobPath string) error {
	if strings.Trim(blobPath, "/") == "" {
		return ErrInvalidPath
	}
	key := s.Key(blobPath)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return apperrors.Failure(storageErrorCode, "delete object", err)
	}

	s.logger.Debug("blob deleted", zap.String("key", key))
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
