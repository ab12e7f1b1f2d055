package check

import (
	"errors"
	"fmt"
	"io"
)

// boundedSource wraps an io.ReadSeeker so that forward seeks past the end of data fail instead of being silently
// allowed like os.File does.
type boundedSource struct {
	io.ReadSeeker
	offset int64
}

func (r *boundedSource) Read(p []byte) (n int, err error) {
	n, err = r.ReadSeeker.Read(p)
	r.offset += int64(n)
	return
}

func (r *boundedSource) rewind() error {
	off, err := r.ReadSeeker.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("rewind error: %w", err)
	}
	if off != 0 {
		return fmt.Errorf("rewind error: ended up at offset %d", off)
	}

	r.offset = 0
	return nil
}

// skip advances the read offset by n bytes, failing if fewer than n bytes remain.
//
// The read offset is left unchanged on failure.
func (r *boundedSource) skip(n int64) error {
	end, err := r.ReadSeeker.Seek(0, io.SeekEnd)
	if err != nil {
		_, _ = r.ReadSeeker.Seek(r.offset, io.SeekStart)
		return &SeekError{Offset: r.offset, Want: n, Remaining: -1, Err: err}
	}

	if remaining := end - r.offset; remaining < n {
		_, _ = r.ReadSeeker.Seek(r.offset, io.SeekStart)
		return &SeekError{Offset: r.offset, Want: n, Remaining: max(remaining, 0), Err: ErrInsufficientData}
	}

	off, err := r.ReadSeeker.Seek(r.offset+n, io.SeekStart)
	if err != nil {
		return &SeekError{Offset: r.offset, Want: n, Remaining: -1, Err: err}
	}

	r.offset = off
	return nil
}

// readField reads exactly the width of the field.
func (r *boundedSource) readField(f Field, buf []byte) ([]byte, error) {
	b := buf[:f.Width()]
	if _, err := io.ReadFull(r, b); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &FieldError{Field: f, Err: err}
	}

	return b, nil
}
