package check

import (
	"errors"
	"fmt"
)

var (
	// ErrMagicNumber is returned if the first 4 bytes are not "PK\x03\x04".
	//
	// Self-extracting archives and ZIP files with prepended data fail this check.
	ErrMagicNumber = errors.New("incorrect magic number")

	// ErrSignature is returned if the decoded signature field is not Signature.
	ErrSignature = errors.New("mismatched local file header signature")

	// ErrInsufficientData is returned if there are fewer bytes remaining than the header declares.
	ErrInsufficientData = errors.New("insufficient data")
)

// FieldError is returned if a field of the local file header could not be read in full.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("read %s error: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// SeekError is returned if the file name, extra field, and compressed data declared by the header extend past the
// end of the source.
type SeekError struct {
	// Offset is the offset at which the seek was attempted.
	Offset int64
	// Want is the number of bytes the header declares.
	Want int64
	// Remaining is the number of bytes actually remaining, or -1 if it could not be determined.
	Remaining int64
	Err       error
}

func (e *SeekError) Error() string {
	if e.Remaining >= 0 {
		return fmt.Sprintf("seek %d bytes from offset %d error: only %d bytes remaining: %v", e.Want, e.Offset, e.Remaining, e.Err)
	}

	return fmt.Sprintf("seek %d bytes from offset %d error: %v", e.Want, e.Offset, e.Err)
}

func (e *SeekError) Unwrap() error {
	return e.Err
}

// ChecksumError is returned by payload verification if the computed CRC-32 or uncompressed size does not match the
// values stored in the header.
type ChecksumError struct {
	ExpectedCRC32, ActualCRC32 uint32
	ExpectedSize, ActualSize   int64
}

func (e *ChecksumError) Error() string {
	if e.ExpectedSize != e.ActualSize {
		return fmt.Sprintf("mismatched uncompressed size, got %d, expected %d", e.ActualSize, e.ExpectedSize)
	}

	return fmt.Sprintf("mismatched crc-32, got 0x%08x, expected 0x%08x", e.ActualCRC32, e.ExpectedCRC32)
}
