package download

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used for uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination uploads artifacts to bucket/prefix/filename.
type S3Destination struct {
	client S3API
	bucket string
	prefix string
	// Key is set to the object key of the last upload.
	Key string
}

// NewS3Destination loads the default AWS configuration for region.
func NewS3Destination(ctx context.Context, region, bucket, prefix string) (*S3Destination, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3DestinationWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func NewS3DestinationWithClient(client S3API, bucket, prefix string) *S3Destination {
	return &S3Destination{client: client, bucket: bucket, prefix: strings.Trim(strings.TrimSpace(prefix), "/")}
}

// ParseS3URL splits s3://bucket/some/prefix into bucket and prefix.
func ParseS3URL(raw string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URL: %q", raw)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 URL without bucket: %q", raw)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

func (d *S3Destination) Deliver(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := applyPrefix(d.prefix, sanitizeFileName(a.Filename))
	input := &s3.PutObjectInput{
		Bucket:               aws.String(d.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(a.Data),
		ContentType:          aws.String(a.ContentType),
		ContentDisposition:   aws.String(fmt.Sprintf("attachment; filename=%q", sanitizeFileName(a.Filename))),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if _, err := d.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", d.bucket, key, err)
	}
	d.Key = key
	return nil
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	return cleanPrefix + "/" + cleanKey
}
