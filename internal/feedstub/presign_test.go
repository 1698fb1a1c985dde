package feedstub

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s3Config() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.S3Bucket = "media"
	cfg.S3AccessKey = "minioadmin"
	cfg.S3SecretKey = "minioadmin"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000"
	return cfg
}

func TestLocalPresigner(t *testing.T) {
	up, media, err := LocalPresigner{}.Presign(context.Background(), "http://stub:8787/", "video/2026/10/x.mp4")
	require.NoError(t, err)
	assert.Equal(t, "http://stub:8787/uploads/video/2026/10/x.mp4", up)
	assert.Equal(t, "http://stub:8787/media/video/2026/10/x.mp4", media)
}

func TestS3Presigner_SignsPathStyleURL(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), s3Config())
	require.NoError(t, err)

	up, media, err := p.Presign(context.Background(), "", "video/2026/10/x.mp4")
	require.NoError(t, err)

	u, err := url.Parse(up)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/media/video/2026/10/x.mp4", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "http://127.0.0.1:9000/media/video/2026/10/x.mp4", media)
}

func TestS3Presigner_MediaBaseOverride(t *testing.T) {
	cfg := s3Config()
	cfg.S3MediaBaseURL = "https://cdn.example.com/"

	p, err := NewS3Presigner(context.Background(), cfg)
	require.NoError(t, err)

	_, media, err := p.Presign(context.Background(), "", "k.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k.mp4", media)
}

func TestS3Presigner_Errors(t *testing.T) {
	origLoad, origPut := loadDefaultAWSConfig, presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		presignPutObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err := NewS3Presigner(context.Background(), s3Config())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config")

	loadDefaultAWSConfig = origLoad
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}

	p, err := NewS3Presigner(context.Background(), s3Config())
	require.NoError(t, err)
	_, _, err = p.Presign(context.Background(), "", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "presign-put-fail")
}

func TestObjectKey(t *testing.T) {
	k := objectKey("video", `C:\clips\Holiday.MOV`)
	assert.True(t, strings.HasPrefix(k, "video/"), k)
	assert.True(t, strings.HasSuffix(k, ".mov"), k)
}
