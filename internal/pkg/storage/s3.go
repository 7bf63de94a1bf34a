package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Storage writes exports to an S3 bucket. A custom endpoint switches to
// path-style addressing for MinIO and R2.
type S3Storage struct {
	client *s3.Client
	bucket string
	urlFor func(key string) string
}

func NewS3Storage(cfg Config) (*S3Storage, error) {
	creds := credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.S3Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client: client,
		bucket: cfg.S3Bucket,
		urlFor: objectURL(endpoint, cfg.S3Bucket, cfg.S3Region),
	}, nil
}

func objectURL(endpoint, bucket, region string) func(string) string {
	if endpoint != "" {
		return func(key string) string { return endpoint + "/" + bucket + "/" + key }
	}
	host := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucket, region)
	return func(key string) string { return host + key }
}

func (s *S3Storage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	return classify(err, s.bucket, key)
}

func (s *S3Storage) GetURL(key string) string { return s.urlFor(key) }

func classify(err error, bucket, key string) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return fmt.Errorf("%w: %s", ErrBucketMissing, bucket)
	}
	return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
}
