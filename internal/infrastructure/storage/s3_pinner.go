package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/file"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// cidMetadataKey is the object metadata an IPFS-backed S3 gateway sets
// to the content identifier of the stored object.
const cidMetadataKey = "cid"

type S3Pinner struct {
	client *s3.Client
	bucket string
}

// NewS3Pinner builds a pinner for an S3-compatible pinning gateway,
// taking credentials from the default AWS chain.
func NewS3Pinner(ctx context.Context, cfg config.PinningConfig) (*S3Pinner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return NewS3PinnerWithClient(client, cfg.Bucket), nil
}

func NewS3PinnerWithClient(client *s3.Client, bucket string) *S3Pinner {
	return &S3Pinner{client: client, bucket: bucket}
}

func (p *S3Pinner) Pin(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if p.bucket == "" {
		return "", errors.ErrInvalidInput(fmt.Errorf("pinning bucket not configured"))
	}
	// Buffered so the SDK can compute the payload checksum up front.
	data, err := io.ReadAll(body)
	if err != nil {
		return "", errors.ErrInvalidInput(fmt.Errorf("reading %s: %w", name, err))
	}
	key := uuid.NewString() + "-" + path.Base(name)

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", errors.ErrNetworkUnavailable(fmt.Errorf("pinning %s: %w", key, err))
	}

	head, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.ErrNetworkUnavailable(fmt.Errorf("reading pin metadata of %s: %w", key, err))
	}
	cid := head.Metadata[cidMetadataKey]
	if !file.IsPlausibleCID(cid) {
		return "", errors.ErrRejected(fmt.Errorf("gateway returned no usable cid for %s: %q", key, cid))
	}
	return cid, nil
}
