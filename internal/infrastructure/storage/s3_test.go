package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/infrastructure/storage"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

type fakeObjects struct {
	keys      map[string]bool
	headErr   error
	deleted   []string
	deleteErr error
}

func (f *fakeObjects) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if !f.keys[aws.ToString(in.Key)] {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct {
	putKey      string
	putType     string
	getKey      string
	lastExpires time.Duration
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.putKey, f.putType = aws.ToString(in.Key), aws.ToString(in.ContentType)
	f.lastExpires = expires(optFns)
	return &v4.PresignedHTTPRequest{URL: "https://signed/put/" + f.putKey, Method: "PUT"}, nil
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.getKey = aws.ToString(in.Key)
	f.lastExpires = expires(optFns)
	return &v4.PresignedHTTPRequest{URL: "https://signed/get/" + f.getKey, Method: "GET"}, nil
}

func expires(optFns []func(*s3.PresignOptions)) time.Duration {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts.Expires
}

type S3StorageTestSuite struct {
	suite.Suite
	objects   *fakeObjects
	presigner *fakePresigner
	storage   *storage.S3Storage
	ctx       context.Context
}

func TestS3StorageTestSuite(t *testing.T) {
	suite.Run(t, new(S3StorageTestSuite))
}

func (suite *S3StorageTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.objects = &fakeObjects{keys: map[string]bool{"episodes/17.mp4": true}}
	suite.presigner = &fakePresigner{}
	cfg := config.Defaults("episodes-test").Storage
	suite.storage = storage.NewS3StorageWithClients(suite.objects, suite.presigner, cfg, zaptest.NewLogger(suite.T()))
}

func (suite *S3StorageTestSuite) TestKey() {
	assert.Equal(suite.T(), "episodes/17.mp4", suite.storage.Key("/17.mp4"))
	assert.Equal(suite.T(), "episodes/17.mp4", suite.storage.Key("17.mp4"))
}

func (suite *S3StorageTestSuite) TestGenerateUploadURL() {
	// Act
	u, err := suite.storage.GenerateUploadURL(suite.ctx, "/18.mp3", "audio/mpeg")

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://signed/put/episodes/18.mp3", u)
	assert.Equal(suite.T(), "audio/mpeg", suite.presigner.putType)
	assert.Equal(suite.T(), 60*time.Minute, suite.presigner.lastExpires)
}

func (suite *S3StorageTestSuite) TestGenerateReadURL() {
	// Act
	u, err := suite.storage.GenerateReadURL(suite.ctx, "/17.mp4", 15*time.Minute)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "https://signed/get/episodes/17.mp4", u)
	assert.Equal(suite.T(), 15*time.Minute, suite.presigner.lastExpires)
}

func (suite *S3StorageTestSuite) TestGenerateReadURL_Errors() {
	_, err := suite.storage.GenerateReadURL(suite.ctx, "/17.mp4", 0)
	assert.True(suite.T(), apperrors.IsValidation(err))

	_, err = suite.storage.GenerateReadURL(suite.ctx, "/99.mp4", time.Minute)
	assert.ErrorIs(suite.T(), err, storage.ErrObjectNotFound)

	suite.objects.headErr = errors.New("connection reset")
	_, err = suite.storage.GenerateReadURL(suite.ctx, "/17.mp4", time.Minute)
	assert.True(suite.T(), apperrors.IsFailure(err))
	assert.Equal(suite.T(), "Storage.BlobStorageError", apperrors.CodeOf(err))
}

func (suite *S3StorageTestSuite) TestGetPublicURL() {
	assert.Equal(suite.T(), "https://episodes.s3.us-east-1.amazonaws.com/episodes/17.mp4", suite.storage.GetPublicURL("/17.mp4"))

	cfg := config.Defaults("episodes-test").Storage
	cfg.PublicBaseURL = "https://cdn.example.com/"
	s := storage.NewS3StorageWithClients(suite.objects, suite.presigner, cfg, zaptest.NewLogger(suite.T()))
	assert.Equal(suite.T(), "https://cdn.example.com/episodes/17.mp4", s.GetPublicURL("/17.mp4"))
}

func (suite *S3StorageTestSuite) TestDelete() {
	require.NoError(suite.T(), suite.storage.Delete(suite.ctx, "/17.mp4"))
	assert.Equal(suite.T(), []string{"episodes/17.mp4"}, suite.objects.deleted)

	suite.objects.deleteErr = &types.NoSuchKey{}
	assert.NoError(suite.T(), suite.storage.Delete(suite.ctx, "/17.mp4"))

	suite.objects.deleteErr = errors.New("throttled")
	assert.True(suite.T(), apperrors.IsFailure(suite.storage.Delete(suite.ctx, "/17.mp4")))

	assert.True(suite.T(), apperrors.IsValidation(suite.storage.Delete(suite.ctx, "")))
}
