// Package s3readseeker implements io.ReadSeeker on top of ranged S3 GetObject calls so that only the bytes needed
// to validate a ZIP header are ever downloaded.
package s3readseeker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ReadSeeker uses ranged GetObject to implement io.ReadSeekCloser and io.ReaderAt.
type ReadSeeker interface {
	io.ReadSeekCloser
	io.ReaderAt

	// Size returns the size of the S3 object that was determined from the initial HeadObject.
	Size() int64
}

// ReadSeekerClient abstracts the S3 APIs that are needed to implement ReadSeeker.
type ReadSeekerClient interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// DefaultBufferSize is the default value for Options.BufferSize.
//
// A local file header is 30 bytes plus a short name so 4 KiB usually covers it in a single GetObject.
const DefaultBufferSize = 4 * 1024

// Options customises New.
type Options struct {
	// BufferSize is used to provide buffered read-ahead for every Read call.
	//
	// By default, DefaultBufferSize is used so that consecutive small Reads (such as reading a header one field at a
	// time) don't each end up with a GetObject call.
	//
	// Pass zero or a negative value to disable this feature.
	BufferSize int

	// Ctx is used with every GetObject or HeadObject call.
	//
	// By default, context.Background is used.
	Ctx context.Context

	// ExpectedBucketOwner is passed to every GetObject and HeadObject call if given.
	ExpectedBucketOwner *string
}

// New returns a ReadSeeker with the given bucket and key.
//
// The client will be used to determine the size of the object.
func New(client ReadSeekerClient, bucket, key string, optFns ...func(*Options)) (ReadSeeker, error) {
	opts := &Options{
		BufferSize: DefaultBufferSize,
		Ctx:        context.Background(),
	}
	for _, fn := range optFns {
		fn(opts)
	}

	headObjectOutput, err := client.HeadObject(opts.Ctx, &s3.HeadObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: opts.ExpectedBucketOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("determine file size error: %w", err)
	}

	return &readSeeker{
		client:     client,
		bucket:     bucket,
		key:        key,
		ctx:        opts.Ctx,
		owner:      opts.ExpectedBucketOwner,
		size:       aws.ToInt64(headObjectOutput.ContentLength),
		bufferSize: opts.BufferSize,
	}, nil
}

// readSeeker implements ReadSeeker.
//
// buf always contains the bytes starting at off.
type readSeeker struct {
	client      ReadSeekerClient
	bucket, key string
	ctx         context.Context
	owner       *string
	off, size   int64
	buf         bytes.Buffer
	bufferSize  int
}

var (
	// ErrSeekBeforeFirstByte is returned by Seek if the resulting offset would be negative.
	ErrSeekBeforeFirstByte = errors.New("seek ends up before first byte")

	// ErrSeekPastLastByte is returned by Seek if the resulting offset would be past the end of the object.
	//
	// Seeking to exactly the end of the object is allowed.
	ErrSeekPastLastByte = errors.New("seek ends up past last byte")

	// ErrClosed is returned by all methods after Close.
	ErrClosed = errors.New("read seeker already closed")
)

func (r *readSeeker) Size() int64 {
	return r.size
}

// getRange returns the body of the inclusive byte range [start, end].
func (r *readSeeker) getRange(start, end int64) (io.ReadCloser, error) {
	getObjectOutput, err := r.client.GetObject(r.ctx, &s3.GetObjectInput{
		Bucket:              aws.String(r.bucket),
		Key:                 aws.String(r.key),
		Range:               aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
		ExpectedBucketOwner: r.owner,
	})
	if err != nil {
		return nil, fmt.Errorf("get range %d-%d error: %w", start, end, err)
	}

	return getObjectOutput.Body, nil
}

func (r *readSeeker) Read(p []byte) (n int, err error) {
	switch {
	case r.client == nil:
		return 0, ErrClosed
	case len(p) == 0:
		return 0, nil
	case r.off >= r.size:
		return 0, io.EOF
	}

	// always uses from buffer if possible.
	if r.buf.Len() == 0 {
		end := min(r.size, r.off+int64(max(len(p), r.bufferSize))) - 1
		body, err := r.getRange(r.off, end)
		if err != nil {
			return 0, err
		}

		_, err = r.buf.ReadFrom(body)
		if _ = body.Close(); err != nil {
			r.buf.Reset()
			return 0, err
		}

		// a satisfiable range must return at least one byte.
		if r.buf.Len() == 0 {
			return 0, io.ErrUnexpectedEOF
		}
	}

	n, _ = r.buf.Read(p)
	r.off += int64(n)
	return n, nil
}

func (r *readSeeker) ReadAt(p []byte, off int64) (n int, err error) {
	switch m := int64(len(p)); {
	case r.client == nil:
		return 0, ErrClosed
	case off < 0:
		return 0, ErrSeekBeforeFirstByte
	case off >= r.size:
		return 0, io.EOF
	case m == 0:
		return 0, nil
	}

	end := min(r.size, off+int64(len(p))) - 1
	body, err := r.getRange(off, end)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err = io.ReadFull(body, p[:end-off+1])
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return
}

func (r *readSeeker) Seek(offset int64, whence int) (int64, error) {
	if r.client == nil {
		return r.off, ErrClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.off + offset
	case io.SeekEnd:
		abs = r.size + offset
	default:
		return r.off, fmt.Errorf("invalid whence: %d", whence)
	}

	switch {
	case abs < 0:
		return r.off, ErrSeekBeforeFirstByte
	case abs > r.size:
		return r.off, ErrSeekPastLastByte
	}

	// keep whatever remains of the buffer if seeking forward within it.
	if delta := abs - r.off; delta >= 0 && delta <= int64(r.buf.Len()) {
		r.buf.Next(int(delta))
	} else {
		r.buf.Reset()
	}

	r.off = abs
	return r.off, nil
}

func (r *readSeeker) Close() error {
	if r.client == nil {
		return ErrClosed
	}

	r.client = nil
	r.buf.Reset()
	return nil
}
