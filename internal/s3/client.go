package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"recap-video-gen/internal"
)

// ErrNotExist marks a missing object; callers test with errors.Is.
var ErrNotExist = errors.New("s3: object does not exist")

type Client interface {
	PutBytes(ctx context.Context, key string, b []byte, contentType string) error
	GetBytes(ctx context.Context, key string) ([]byte, string, error)
	GetReader(ctx context.Context, key string) (*ObjectReader, error)
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error

	ReadJSON(ctx context.Context, key string, out any) (bool, error)
	WriteJSON(ctx context.Context, key string, v any) error
}

type ObjectReader struct {
	Reader io.ReadCloser
	Size   int64
}

type s3Client struct {
	bucket string
	api    *awss3.Client
	upl    *manager.Uploader
}

func New(cfg internal.Config) (Client, error) {
	endpoint := cfg.S3Endpoint
	forcePathStyle := true
	if strings.Contains(endpoint, "amazonaws.com") {
		forcePathStyle = false
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = forcePathStyle
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
	})

	return &s3Client{
		bucket: cfg.S3Bucket,
		api:    client,
		upl:    manager.NewUploader(client),
	}, nil
}

func (c *s3Client) PutBytes(ctx context.Context, key string, b []byte, contentType string) error {
	_, err := c.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        bytes.NewReader(b),
		ContentType: &contentType,
	})
	return err
}

func (c *s3Client) GetBytes(ctx context.Context, key string) ([]byte, string, error) {
	out, err := c.api.GetObject(ctx, &awss3.GetObjectInput{Bucket: &c.bucket, Key: &key})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, "", ErrNotExist
		}
		return nil, "", err
	}
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", err
	}
	ct := ""
	if out.ContentType != nil {
		ct = *out.ContentType
	}
	return b, ct, nil
}

func (c *s3Client) GetReader(ctx context.Context, key string) (*ObjectReader, error) {
	out, err := c.api.GetObject(ctx, &awss3.GetObjectInput{Bucket: &c.bucket, Key: &key})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotExist
		}
		return nil, err
	}

	size := int64(0)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}

	return &ObjectReader{Reader: out.Body, Size: size}, nil
}

// Upload streams large payloads (finished renders) through the
// multipart uploader instead of buffering them in memory.
func (c *s3Client) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	_, err := c.upl.Upload(ctx, &awss3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        r,
		ContentType: &contentType,
	})
	return err
}

func (c *s3Client) ReadJSON(ctx context.Context, key string, out any) (bool, error) {
	b, _, err := c.GetBytes(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, json.Unmarshal(b, out)
}

func (c *s3Client) WriteJSON(ctx context.Context, key string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return c.PutBytes(ctx, key, b, "application/json")
}
