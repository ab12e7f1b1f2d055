package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3ClientForBucket returns an S3 client for the given bucket.
//
// Loader.Profile takes precedence over the aws-profile setting of the bucket. Clients are cached by bucket.
func (l *Loader) NewS3ClientForBucket(ctx context.Context, bucket string, optFns ...func(*s3.Options)) (*s3.Client, error) {
	key := "s3://" + bucket
	if c, ok := l.s3clientCache.Load(key); ok {
		return c.(*s3.Client), nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, func(opts *config.LoadOptions) error {
		if l.Profile != "" {
			opts.SharedConfigProfile = l.Profile
			return nil
		}

		opts.SharedConfigProfile = l.ForBucket(bucket).AWSProfile
		return nil
	})
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(cfg, optFns...)
	l.s3clientCache.Store(key, c)
	return c, nil
}

// NewS3ClientForBucket calls Loader.NewS3ClientForBucket on the DefaultLoader instance.
func NewS3ClientForBucket(ctx context.Context, bucket string, optFns ...func(*s3.Options)) (*s3.Client, error) {
	return DefaultLoader.NewS3ClientForBucket(ctx, bucket, optFns...)
}
