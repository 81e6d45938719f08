package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by Storage. Defined here so
// tests can substitute a mock.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Presigner generates time-limited GET URLs for private objects.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4PresignedRequest, error)
}

// v4PresignedRequest mirrors the fields of the SDK's presigned request that
// callers need. The SDK type lives in an internal-ish package shape, so the
// adapter below converts.
type v4PresignedRequest struct {
	URL string
}

// Storage is an avatar object store backed by S3. Safe for concurrent use.
type Storage struct {
	client    S3API
	presigner Presigner
	bucket    string
	ttl       time.Duration
	maxSize   int64
}

// Option configures optional Storage collaborators, mainly for tests.
type Option func(*Storage)

// WithClient sets a pre-configured S3 client.
func WithClient(client S3API) Option {
	return func(s *Storage) { s.client = client }
}

// WithPresigner sets a custom presigner.
func WithPresigner(p Presigner) Option {
	return func(s *Storage) { s.presigner = p }
}

// sdkPresigner adapts s3.PresignClient to the local Presigner interface.
type sdkPresigner struct {
	inner *s3.PresignClient
	ttl   time.Duration
}

func (p *sdkPresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4PresignedRequest, error) {
	req, err := p.inner.PresignGetObject(ctx, params, func(o *s3.PresignOptions) {
		o.Expires = p.ttl
	})
	if err != nil {
		return nil, err
	}
	return &v4PresignedRequest{URL: req.URL}, nil
}

// New creates an S3-backed Storage from config.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	st := &Storage{
		bucket:  cfg.Bucket,
		ttl:     cfg.PresignTTL,
		maxSize: cfg.MaxObjectSize,
	}
	for _, opt := range opts {
		opt(st)
	}

	if st.client == nil {
		awsOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOpts = append(awsOpts,
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretKey, "",
				)),
			)
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}

		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
		st.client = client
		if st.presigner == nil {
			st.presigner = &sdkPresigner{inner: s3.NewPresignClient(client), ttl: cfg.PresignTTL}
		}
	}

	return st, nil
}

// Put uploads content under key after validating size and image type.
// The key is normalized and checked against path traversal.
func (s *Storage) Put(ctx context.Context, key string, content []byte) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if s.maxSize > 0 && int64(len(content)) > s.maxSize {
		return fmt.Errorf("%w: %d bytes", ErrObjectTooLarge, len(content))
	}

	contentType, err := DetectImageType(content)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Join(ErrUploadFailed, err)
	}
	return nil
}

// Delete removes the object at key. Missing objects map to ErrObjectNotFound.
func (s *Storage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return errors.Join(ErrDeleteFailed, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// PresignedURL returns a time-limited GET URL for the object at key.
func (s *Storage) PresignedURL(ctx context.Context, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.presigner == nil {
		return "", ErrPresignFailed
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.Join(ErrPresignFailed, err)
	}
	return req.URL, nil
}

// TTL reports how long presigned URLs remain valid, so callers can size
// their caches below it.
func (s *Storage) TTL() time.Duration {
	return s.ttl
}

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// DetectImageType sniffs content via magic bytes and returns the MIME type
// if it is a supported avatar format. Extension-based checks are not used
// since they are trivially spoofed.
func DetectImageType(content []byte) (string, error) {
	if len(content) == 0 {
		return "", ErrNotAnImage
	}
	contentType := http.DetectContentType(content)
	if !imageContentTypes[contentType] {
		return "", fmt.Errorf("%w: detected %s", ErrNotAnImage, contentType)
	}
	return contentType, nil
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}
