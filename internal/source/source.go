// Package source opens the byte sources that zipcheck validates: local files and S3 objects.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nguyengg/zipcheck/internal/config"
	"github.com/nguyengg/zipcheck/s3readseeker"
)

// Opener opens local files or S3 objects given as "s3://bucket/key".
//
// The zero value opens local files and S3 objects using config.DefaultLoader for S3 clients.
type Opener struct {
	// Ctx is used for all S3 calls.
	//
	// By default, context.Background is used.
	Ctx context.Context

	// Loader provides S3 clients and bucket-level settings.
	//
	// By default, config.DefaultLoader is used.
	Loader *config.Loader

	// NewClient can be used to override how S3 clients are created.
	NewClient func(ctx context.Context, bucket string) (s3readseeker.ReadSeekerClient, error)
}

// ParseS3URI parses "s3://bucket/key" into its bucket and key.
//
// ok is false if the name doesn't have the s3:// scheme. An error is returned if the scheme is present but either
// the bucket or key is missing.
func ParseS3URI(name string) (bucket, key string, ok bool, err error) {
	rest, ok := strings.CutPrefix(name, "s3://")
	if !ok {
		return "", "", false, nil
	}

	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return bucket, key, true, fmt.Errorf("invalid S3 URI %q: expected s3://bucket/key", name)
	}

	return bucket, key, true, nil
}

// Open opens the named source for reading.
//
// Caller is responsible for closing the returned source.
func (o *Opener) Open(name string) (io.ReadSeekCloser, error) {
	bucket, key, ok, err := ParseS3URI(name)
	switch {
	case err != nil:
		return nil, err
	case !ok:
		return os.Open(name)
	}

	ctx := o.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	loader := o.Loader
	if loader == nil {
		loader = config.DefaultLoader
	}

	var client s3readseeker.ReadSeekerClient
	if o.NewClient != nil {
		client, err = o.NewClient(ctx, bucket)
	} else {
		client, err = loader.NewS3ClientForBucket(ctx, bucket)
	}
	if err != nil {
		return nil, fmt.Errorf("create S3 client error: %w", err)
	}

	return s3readseeker.New(client, bucket, key, func(opts *s3readseeker.Options) {
		opts.Ctx = ctx
		opts.ExpectedBucketOwner = loader.ForBucket(bucket).ExpectedBucketOwner
	})
}
