package feedstub

import (
	"flag"
	"fmt"
	"io"

	"github.com/kelseyhightower/envconfig"

	"github.com/dmitrijs2005/feedupload/internal/flagx"
)

// Config holds runtime settings for the dev feed service.
//
// Fields:
//   - Addr: bind address.
//   - APIKey: value expected in the X-MicrofeedAPI-Key header.
//   - PublicURL: base URL handed out in upload and media URLs; derived from
//     the request Host when empty.
//   - S3Bucket: when set, upload URLs are S3 presigned PUTs instead of the
//     in-memory upload endpoint.
//   - S3AccessKey / S3SecretKey / S3Region / S3BaseEndpoint: S3-compatible
//     backend settings (MinIO, R2).
//   - S3MediaBaseURL: public prefix for media URLs of S3 objects.
type Config struct {
	Addr           string `envconfig:"ADDR"`
	APIKey         string `envconfig:"API_KEY"`
	PublicURL      string `envconfig:"PUBLIC_URL"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`
	S3Region       string `envconfig:"S3_REGION"`
	S3BaseEndpoint string `envconfig:"S3_ENDPOINT"`
	S3MediaBaseURL string `envconfig:"S3_MEDIA_BASE_URL"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8787"
	c.APIKey = "dev-key"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
}

// LoadConfig applies defaults, FEEDSTUB_* environment variables and then
// flags from args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := envconfig.Process("FEEDSTUB", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              bind address (e.g., ":8787")
//	-k string              API key
//	-public-url string     public base URL
//	-s3-bucket string      S3 bucket; enables presigned uploads
//	-s3-access-key string  S3 access key
//	-s3-secret-key string  S3 secret key
//	-s3-region string      S3 region
//	-s3-endpoint string    S3 base endpoint
//	-s3-media-url string   public prefix for S3 media URLs
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{
		"-a", "-k", "-public-url", "-s3-bucket", "-s3-access-key", "-s3-secret-key",
		"-s3-region", "-s3-endpoint", "-s3-media-url",
	})

	fs := flag.NewFlagSet("feedstub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to listen on")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "API key")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "public base URL")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3AccessKey, "s3-access-key", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "s3-secret-key", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3MediaBaseURL, "s3-media-url", cfg.S3MediaBaseURL, "public prefix for S3 media URLs")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
