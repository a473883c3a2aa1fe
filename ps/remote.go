// Input and output locations: local paths, file://, http(s):// and s3://.
package ps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Config overrides the default AWS configuration chain. Empty fields fall
// back to the environment and shared config files.
type S3Config struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"` // S3-compatible services, path-style addressing
}

type scheme string

const (
	schemeStdio scheme = "-"
	schemeFile  scheme = "file"
	schemeS3    scheme = "s3"
	schemeHTTP  scheme = "http"
	schemeHTTPS scheme = "https"
	schemeLocal scheme = "local"
)

func detectScheme(location string) scheme {
	lower := strings.ToLower(location)
	switch {
	case location == "-":
		return schemeStdio
	case strings.HasPrefix(lower, "s3://"):
		return schemeS3
	case strings.HasPrefix(lower, "https://"):
		return schemeHTTPS
	case strings.HasPrefix(lower, "http://"):
		return schemeHTTP
	case strings.HasPrefix(lower, "file://"):
		return schemeFile
	default:
		return schemeLocal
	}
}

// OpenReader opens location for reading. "-" is standard input.
func OpenReader(ctx context.Context, location string, cfg *S3Config) (io.ReadCloser, error) {
	switch detectScheme(location) {
	case schemeStdio:
		return io.NopCloser(os.Stdin), nil
	case schemeLocal:
		return os.Open(location)
	case schemeFile:
		return os.Open(location[len("file://"):])
	case schemeHTTP, schemeHTTPS:
		return openHTTPReader(ctx, location)
	case schemeS3:
		return openS3Reader(ctx, location, cfg)
	default:
		return nil, fmt.Errorf("unsupported location: %s", location)
	}
}

// OpenWriter opens location for writing. "-" is standard output. S3 objects
// are uploaded on Close.
func OpenWriter(ctx context.Context, location string, cfg *S3Config) (io.WriteCloser, error) {
	switch detectScheme(location) {
	case schemeStdio:
		return nopWriteCloser{os.Stdout}, nil
	case schemeLocal:
		return os.Create(location)
	case schemeFile:
		return os.Create(location[len("file://"):])
	case schemeHTTP, schemeHTTPS:
		return nil, fmt.Errorf("HTTP/HTTPS does not support writing: %s", location)
	case schemeS3:
		return openS3Writer(ctx, location, cfg)
	default:
		return nil, fmt.Errorf("unsupported location: %s", location)
	}
}

// ReadAll reads a whole location.
func ReadAll(ctx context.Context, location string, cfg *S3Config) ([]byte, error) {
	r, err := OpenReader(ctx, location, cfg)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func openHTTPReader(ctx context.Context, url string) (io.ReadCloser, error) {
	client := &http.Client{Timeout: time.Minute}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func parseS3URL(url string) (bucket, key string, err error) {
	parts := strings.SplitN(url[len("s3://"):], "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	return parts[0], parts[1], nil
}

func newS3Client(ctx context.Context, cfg *S3Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg != nil && cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg != nil && cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg != nil && cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

func openS3Reader(ctx context.Context, url string, cfg *S3Config) (io.ReadCloser, error) {
	bucket, key, err := parseS3URL(url)
	if err != nil {
		return nil, err
	}
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 object %s: %w", url, err)
	}
	return resp.Body, nil
}

type s3Writer struct {
	ctx    context.Context
	client *s3.Client
	bucket string
	key    string
	buffer bytes.Buffer
	closed bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("writer is closed")
	}
	return w.buffer.Write(p)
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buffer.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", w.bucket, w.key, err)
	}
	log.Debug().Str("bucket", w.bucket).Str("key", w.key).Int("bytes", w.buffer.Len()).Msg("uploaded to S3")
	return nil
}

func openS3Writer(ctx context.Context, url string, cfg *S3Config) (io.WriteCloser, error) {
	bucket, key, err := parseS3URL(url)
	if err != nil {
		return nil, err
	}
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &s3Writer{ctx: ctx, client: client, bucket: bucket, key: key}, nil
}
