package config

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dustin/go-humanize"
)

// CheckConfig contains settings for validating files, from the [check] section.
type CheckConfig struct {
	// VerifyChecksum enables payload verification by default.
	VerifyChecksum bool
	// MaxVerifyBytes is the parsed value of max-verify-size, or 0 if not set.
	MaxVerifyBytes int64
}

// ForCheck returns configuration for validating files.
func (l *Loader) ForCheck() (c CheckConfig, err error) {
	sec, err := l.cfg.GetSection("check")
	if err != nil {
		return c, nil
	}

	if sec.HasKey("verify-checksum") {
		if c.VerifyChecksum, err = sec.Key("verify-checksum").Bool(); err != nil {
			return c, fmt.Errorf("parse verify-checksum error: %w", err)
		}
	}

	if sec.HasKey("max-verify-size") {
		v := sec.Key("max-verify-size").Value()
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return c, fmt.Errorf("parse max-verify-size error: %w", err)
		}

		c.MaxVerifyBytes = int64(n)
	}

	return c, nil
}

// ForCheck calls Loader.ForCheck on the DefaultLoader instance.
func ForCheck() (CheckConfig, error) {
	return DefaultLoader.ForCheck()
}

// BucketConfig contains configuration settings for a specific bucket.
type BucketConfig struct {
	Bucket              string
	AWSProfile          string
	ExpectedBucketOwner *string
}

// ForBucket returns configuration for a specific bucket from the [s3://bucket] section.
func (l *Loader) ForBucket(bucket string) (c BucketConfig) {
	c.Bucket = bucket

	sec, err := l.cfg.GetSection("s3://" + bucket)
	if err != nil {
		return c
	}

	c.AWSProfile = sec.Key("aws-profile").Value()

	if sec.HasKey("expected-bucket-owner") {
		c.ExpectedBucketOwner = aws.String(sec.Key("expected-bucket-owner").Value())
	}

	return
}

// ForBucket calls Loader.ForBucket on the DefaultLoader instance.
func ForBucket(bucket string) (c BucketConfig) {
	return DefaultLoader.ForBucket(bucket)
}
