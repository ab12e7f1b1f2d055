// Package check validates the first local file header of a ZIP archive.
//
// Validation runs a fixed sequence of checks and stops at the first failure: a quick magic number check, decoding
// of the 30-byte fixed-size header one field at a time, signature validation, and finally a bounds check that the
// file name, extra field, and compressed data declared by the header are all present. Every failure maps to its own
// Code so that callers can tell "not a ZIP file" apart from "truncated ZIP file" and "unreadable file".
//
// Only the first local file header is ever examined; the central directory is not read.
package check

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"
)

// DefaultMaxVerifyBytes is the default value of [Options.MaxVerifyBytes].
const DefaultMaxVerifyBytes int64 = 1 << 30

// Options customises Validate and ValidateFile.
type Options struct {
	// Logger receives informational messages such as the compression method as soon as it is decoded.
	//
	// By default, messages are discarded.
	Logger *log.Logger

	// Open is used by ValidateFile to open the named source.
	//
	// By default, os.Open is used.
	Open func(name string) (io.ReadSeekCloser, error)

	// VerifyChecksum enables decompressing the payload of the first entry and comparing its CRC-32 against the
	// value stored in the header.
	//
	// Disabled by default in which case only the sizes are accounted for.
	VerifyChecksum bool

	// MaxVerifyBytes skips payload verification if the compressed size is larger than this many bytes.
	//
	// By default, DefaultMaxVerifyBytes is used. Pass zero or a negative value to remove the limit.
	MaxVerifyBytes int64

	// Progress, if given, is called once before payload verification starts with the number of compressed bytes
	// to be read. The returned io.Writer will receive a copy of the compressed bytes as they are read.
	Progress func(size int64) io.Writer
}

func newOptions(optFns []func(*Options)) *Options {
	opts := &Options{
		Logger: log.New(io.Discard, "", 0),
		Open: func(name string) (io.ReadSeekCloser, error) {
			return os.Open(name)
		},
		MaxVerifyBytes: DefaultMaxVerifyBytes,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	return opts
}

// ValidateFile opens the named file using Options.Open then validates it with Validate.
//
// The file is always closed before ValidateFile returns.
func ValidateFile(name string, optFns ...func(*Options)) Result {
	opts := newOptions(optFns)

	src, err := opts.Open(name)
	if err != nil {
		return Result{Code: FileOpenError, Message: "could not open file", Err: fmt.Errorf("open file error: %w", err)}
	}
	defer src.Close()

	return validate(src, opts)
}

// Validate checks that src starts with a well-formed ZIP local file header.
//
// src must be positioned at offset 0. It is read sequentially and only ever seeks back to offset 0 once (after the
// magic number check), and then forward past the data declared by the header.
func Validate(src io.ReadSeeker, optFns ...func(*Options)) Result {
	return validate(src, newOptions(optFns))
}

func validate(rs io.ReadSeeker, opts *Options) (res Result) {
	src := &boundedSource{ReadSeeker: rs}

	var magic [4]byte
	if _, err := io.ReadFull(src, magic[:]); err != nil {
		return Result{Code: ReadFailure, Message: "failed to read from file", Err: fmt.Errorf("read magic number error: %w", err)}
	}
	if !bytes.Equal(magic[:], Magic[:]) {
		return Result{Code: MagicNumberMismatch, Message: "incorrect magic number", Err: fmt.Errorf("%w: got 0x%x", ErrMagicNumber, magic)}
	}

	if err := src.rewind(); err != nil {
		return Result{Code: ReadFailure, Message: "failed to seek in file", Err: err}
	}

	buf := make([]byte, 4)
	for i := range fields {
		f := Field(i)
		b, err := src.readField(f, buf)
		if err != nil {
			res.Code, res.Message, res.Err = f.Code(), f.Code().String(), err
			return res
		}

		fields[f].set(&res.Header, b)
		res.Decoded++

		if f == FieldMethod {
			opts.Logger.Printf("compression method: %s (%d)", res.Header.MethodName(), res.Header.Method)
		}
	}

	h := res.Header
	if h.Signature != Signature {
		res.Code, res.Message = HeaderSignatureMismatch, "mismatched local file header signature"
		res.Err = fmt.Errorf("%w: got 0x%08x, expected 0x%08x", ErrSignature, h.Signature, Signature)
		return res
	}

	if err := src.skip(h.trailerLen()); err != nil {
		res.Code, res.Message, res.Err = ReadFailure, "failed to seek in file", err
		return res
	}

	opts.Logger.Printf("first entry has %s compressed data (%s uncompressed)",
		humanize.IBytes(uint64(h.CompressedSize)),
		humanize.IBytes(uint64(h.UncompressedSize)))

	if opts.VerifyChecksum {
		if code, err := verifyPayload(src, h, opts); err != nil {
			res.Code, res.Message, res.Err = code, err.Error(), err
			return res
		}
	}

	res.Code, res.Message = OK, "the file is a valid ZIP file"
	return res
}
