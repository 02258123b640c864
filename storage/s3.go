package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the parameters of an S3 backend. Credentials come from the
// default AWS chain (environment, shared config, instance role).
type S3Config struct {
	Bucket    string
	Key       string // object key of the document, "projects.json" by default.
	Region    string // "us-east-1" by default.
	Endpoint  string // optional, for S3-compatible services like MinIO.
	PathStyle bool
}

// S3 keeps the document in a single object of an S3-compatible bucket.
type S3 struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3 creates an S3 backend from the configuration.
func NewS3(ctx context.Context, cfg S3Config, optFns ...func(*s3.Options)) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("could not load aws configuration: %w", err)
	}
	opts := append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)
	return NewS3FromClient(s3.NewFromConfig(awsCfg, opts...), cfg.Bucket, cfg.Key), nil
}

// NewS3FromClient returns an S3 backend using an existing client.
func NewS3FromClient(client *s3.Client, bucket, key string) *S3 {
	if key == "" {
		key = "projects.json"
	}
	return &S3{client: client, bucket: bucket, key: key}
}

func (s *S3) String() string { return "s3://" + s.bucket + "/" + s.key }

// Read downloads the document. A missing object matches fs.ErrNotExist.
func (s *S3) Read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if isNotFound(err) {
		return nil, fmt.Errorf("%s: %w", s, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get %s: %w", s, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", s, err)
	}
	return data, nil
}

// Write uploads the document, replacing the object.
func (s *S3) Write(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("could not put %s: %w", s, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
