package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/zipcheck/internal/config"
	"github.com/nguyengg/zipcheck/s3readseeker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		key     string
		ok      bool
		wantErr bool
	}{
		{name: "s3://bucket/path/to/file.zip", bucket: "bucket", key: "path/to/file.zip", ok: true},
		{name: "s3://bucket/", bucket: "bucket", ok: true, wantErr: true},
		{name: "s3://bucket", bucket: "bucket", ok: true, wantErr: true},
		{name: "s3:///key", key: "key", ok: true, wantErr: true},
		{name: "path/to/file.zip"},
		{name: "/abs/s3://bucket/key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, ok, err := ParseS3URI(tt.name)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.ok, ok)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpener_Open_Local(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.zip")
	require.NoError(t, os.WriteFile(name, []byte("PK\x03\x04"), 0644))

	f, err := (&Opener{}).Open(name)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04"), data)

	_, err = (&Opener{}).Open(filepath.Join(t.TempDir(), "missing.zip"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// objectClient serves a single in-memory object.
type objectClient struct {
	data  []byte
	owner *string
}

func (c *objectClient) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	c.owner = input.ExpectedBucketOwner

	start, end, _ := strings.Cut(strings.TrimPrefix(aws.ToString(input.Range), "bytes="), "-")
	i, err := strconv.Atoi(start)
	if err != nil {
		return nil, err
	}
	j, err := strconv.Atoi(end)
	if err != nil {
		return nil, err
	}
	if j >= len(c.data) {
		return nil, fmt.Errorf("unsatisfiable range: %s", aws.ToString(input.Range))
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(c.data[i : j+1]))}, nil
}

func (c *objectClient) HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(c.data)))}, nil
}

func TestOpener_Open_S3(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(path, []byte("[s3://my-bucket]\nexpected-bucket-owner = 111122223333\n"), 0644))
	loader := config.NewLoader()
	require.NoError(t, loader.LoadFile(path))

	client := &objectClient{data: []byte("hello, world!")}
	o := &Opener{
		Loader: loader,
		NewClient: func(_ context.Context, bucket string) (s3readseeker.ReadSeekerClient, error) {
			assert.Equal(t, "my-bucket", bucket)
			return client, nil
		},
	}

	f, err := o.Open("s3://my-bucket/a/b.zip")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", string(data))
	assert.Equal(t, "111122223333", aws.ToString(client.owner))

	_, err = o.Open("s3://my-bucket")
	assert.Error(t, err)
}
