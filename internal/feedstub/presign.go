package feedstub

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PresignExpiry is how long an issued upload URL stays valid.
const PresignExpiry = 15 * time.Minute

// Presigner issues a single-use upload URL and the public media URL for an
// object key. base is the stub's own public URL.
type Presigner interface {
	Presign(ctx context.Context, base, key string) (uploadURL, mediaURL string, err error)
}

// LocalPresigner points uploads at the stub's own /uploads endpoint.
type LocalPresigner struct{}

func (LocalPresigner) Presign(_ context.Context, base, key string) (string, string, error) {
	base = strings.TrimRight(base, "/")
	return base + "/uploads/" + key, base + "/media/" + key, nil
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Presigner issues presigned PUT URLs against an S3-compatible backend.
type S3Presigner struct {
	client    *s3.PresignClient
	bucket    string
	mediaBase string
}

// NewS3Presigner builds a presign client from cfg's S3 settings.
func NewS3Presigner(ctx context.Context, cfg *Config) (*S3Presigner, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	mediaBase := cfg.S3MediaBaseURL
	if mediaBase == "" {
		mediaBase = strings.TrimRight(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
	}

	return &S3Presigner{
		client:    newS3PresignClient(client),
		bucket:    cfg.S3Bucket,
		mediaBase: strings.TrimRight(mediaBase, "/"),
	}, nil
}

func (p *S3Presigner) Presign(ctx context.Context, _ string, key string) (string, string, error) {
	req, err := presignPutObject(p.client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, p.mediaBase + "/" + key, nil
}

// objectKey builds a storage key for a file of the given category, keeping
// the local file's extension.
func objectKey(category, localPath string) string {
	d := time.Now().UTC()
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(localPath, `\`, "/")))
	return fmt.Sprintf("%s/%d/%02d/%s%s", category, d.Year(), d.Month(), uuid.NewString(), ext)
}
