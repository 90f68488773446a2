package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-hclog"
)

// S3Config configures the S3-backed file store.
type S3Config struct {
	Bucket string
	Prefix string
	Region string

	// Endpoint supports MinIO and other S3-compatible services.
	Endpoint string
}

// S3Store persists files to an S3 bucket.
type S3Store struct {
	client *s3.Client
	cfg    S3Config
	log    hclog.Logger
}

// NewS3Store creates an S3-backed file store.
func NewS3Store(ctx context.Context, cfg S3Config, log hclog.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing for MinIO.
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		cfg:    cfg,
		log:    log.Named("s3-store"),
	}, nil
}

// Store uploads the stream to the bucket under prefix/name and returns its
// metadata. The stream is buffered so the checksum covers exactly the bytes
// uploaded.
func (s *S3Store) Store(ctx context.Context, name string, r io.Reader) (FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return FileInfo{}, fmt.Errorf("error reading stream: %w", err)
	}

	key := path.Join(s.cfg.Prefix, name)
	sum := sha256.Sum256(data)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return FileInfo{}, fmt.Errorf("error uploading to s3: %w", err)
	}

	s.log.Debug("stored file", "bucket", s.cfg.Bucket, "key", key, "size", len(data))

	return FileInfo{
		Path:     fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, key),
		Size:     int64(len(data)),
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}
