package initializers

import (
	"bytes"
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Mirror copies generated artifacts to a bucket so a local disk wipe
// doesn't lose them. Upload failures are the caller's to log; generation
// never depends on the mirror succeeding.
type S3Mirror struct {
	uploader *manager.Uploader
	bucket   string
}

func NewS3Mirror(ctx context.Context, region, bucket string) (*S3Mirror, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	return &S3Mirror{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}, nil
}

func (m *S3Mirror) Upload(ctx context.Context, key, contentType string, data []byte) error {
	_, err := m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &m.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	return err
}
