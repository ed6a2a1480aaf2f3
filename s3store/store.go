// Package s3store provides an S3-compatible blob store for edgeserve.
// Any endpoint speaking the S3 API (AWS, Cloudflare R2, MinIO) can be used.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sagarc03/edgeserve"
)

// Config holds S3 connection settings.
type Config struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Prefix          string `mapstructure:"prefix" yaml:"prefix"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// Store reads and writes objects in a single bucket, optionally under a key prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewStore loads the AWS configuration and creates a Store. Static credentials
// are used when both keys are set, otherwise the default credential chain applies.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("new s3 store: %w: bucket is required", edgeserve.ErrInvalidInput)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new s3 store: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return New(client, cfg.Bucket, cfg.Prefix), nil
}

// New wraps an existing client.
func New(client *s3.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

// Get fetches an object. Returns edgeserve.ErrNotFound for missing keys.
func (s *Store) Get(ctx context.Context, key string) (edgeserve.Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return edgeserve.Object{}, edgeserve.ErrNotFound
		}
		return edgeserve.Object{}, fmt.Errorf("get object from s3: %w", err)
	}

	obj := edgeserve.Object{
		Body:        out.Body,
		HTTPEtag:    aws.ToString(out.ETag),
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		obj.Uploaded = out.LastModified.UTC()
	}

	return obj, nil
}

// Write uploads content under key. Non-seekable content is buffered in memory
// so the request payload can be signed.
func (s *Store) Write(ctx context.Context, key string, content io.Reader, contentType string) (edgeserve.SaveResult, error) {
	if !edgeserve.IsValidKey(key) {
		return edgeserve.SaveResult{}, fmt.Errorf("write %q: %w", key, edgeserve.ErrInvalidInput)
	}

	body, size, err := seekable(content)
	if err != nil {
		return edgeserve.SaveResult{}, fmt.Errorf("write %s: %w", key, err)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return edgeserve.SaveResult{}, fmt.Errorf("put object to s3: %w", err)
	}

	return edgeserve.SaveResult{
		BytesWritten: size,
		Etag:         strings.Trim(aws.ToString(out.ETag), `"`),
	}, nil
}

func seekable(r io.Reader) (io.ReadSeeker, int64, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		size, err := rs.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("measure content: %w", err)
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, 0, fmt.Errorf("rewind content: %w", err)
		}
		return rs, size, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read content: %w", err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	// Some S3-compatible stores answer with a generic NotFound
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}

var (
	_ edgeserve.BlobStore  = (*Store)(nil)
	_ edgeserve.BlobWriter = (*Store)(nil)
)
