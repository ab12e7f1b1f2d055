package check

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/mholt/archives"
	"github.com/nguyengg/zipcheck/zip/crc"
	"github.com/ulikunitz/xz"
)

// decompressor returns a reader that decompresses the payload read from src.
type decompressor func(src io.Reader) (io.ReadCloser, error)

// decompressors are keyed by compression method.
var decompressors = map[uint16]decompressor{
	0: func(src io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(src), nil
	},
	8: func(src io.Reader) (io.ReadCloser, error) {
		return flate.NewReader(src), nil
	},
	12: func(src io.Reader) (io.ReadCloser, error) {
		return archives.Bz2{}.OpenReader(src)
	},
	93: func(src io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, err
		}
		return &zstdDecoder{dec}, nil
	},
	95: func(src io.Reader) (io.ReadCloser, error) {
		r, err := xz.NewReader(src)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(r), nil
	},
}

type zstdDecoder struct {
	*zstd.Decoder
}

// Close adapts zstd.Decoder.Close which doesn't return error.
func (d *zstdDecoder) Close() error {
	d.Decoder.Close()
	return nil
}

// CanVerify returns true if payloads compressed with the given method can be verified.
func CanVerify(method uint16) bool {
	_, ok := decompressors[method]
	return ok
}

// verifyPayload decompresses the payload of the entry and compares its CRC-32 and size against the header.
//
// Entries that cannot be verified are logged and skipped. On return, the read offset is restored to the end of the
// compressed data.
func verifyPayload(src *boundedSource, h LocalFileHeader, opts *Options) (Code, error) {
	switch size := int64(h.CompressedSize); {
	case h.Flags&FlagEncrypted != 0:
		opts.Logger.Printf("skip checksum verification: payload is encrypted")
		return OK, nil
	case h.Flags&FlagDataDescriptor != 0:
		opts.Logger.Printf("skip checksum verification: crc-32 and sizes are stored in a data descriptor")
		return OK, nil
	case opts.MaxVerifyBytes > 0 && size > opts.MaxVerifyBytes:
		opts.Logger.Printf("skip checksum verification: compressed size (%d) exceeds limit (%d)", size, opts.MaxVerifyBytes)
		return OK, nil
	case !CanVerify(h.Method):
		opts.Logger.Printf("skip checksum verification: unsupported compression method (%s)", h.MethodName())
		return OK, nil
	}

	end := src.offset
	start := HeaderLen + int64(h.FileNameLength) + int64(h.ExtraFieldLength)
	if _, err := src.ReadSeeker.Seek(start, io.SeekStart); err != nil {
		return ReadFailure, fmt.Errorf("seek to compressed data error: %w", err)
	}

	code, err := verify(io.LimitReader(src.ReadSeeker, int64(h.CompressedSize)), h, opts)

	if _, seekErr := src.ReadSeeker.Seek(end, io.SeekStart); seekErr != nil && err == nil {
		return ReadFailure, fmt.Errorf("seek to end of compressed data error: %w", seekErr)
	}
	src.offset = end

	return code, err
}

// verify decompresses r and compares the result against the header.
//
// At most UncompressedSize+1 bytes are decompressed so that a payload that inflates past its declared size fails
// without being decompressed in full.
func verify(r io.Reader, h LocalFileHeader, opts *Options) (Code, error) {
	if opts.Progress != nil {
		if w := opts.Progress(int64(h.CompressedSize)); w != nil {
			r = io.TeeReader(r, w)
		}
	}

	dec, err := decompressors[h.Method](r)
	if err != nil {
		return PayloadDecodeError, fmt.Errorf("create %s decoder error: %w", h.MethodName(), err)
	}
	defer dec.Close()

	d := crc.NewIEEE()
	n, err := io.Copy(d, io.LimitReader(dec, int64(h.UncompressedSize)+1))
	if err != nil {
		return PayloadDecodeError, fmt.Errorf("decompress payload error: %w", err)
	}

	if sum := d.Sum32(); sum != h.CRC32 || n != int64(h.UncompressedSize) {
		return ChecksumMismatch, &ChecksumError{
			ExpectedCRC32: h.CRC32,
			ActualCRC32:   sum,
			ExpectedSize:  int64(h.UncompressedSize),
			ActualSize:    n,
		}
	}

	opts.Logger.Printf("verified crc-32 0x%08x", h.CRC32)
	return OK, nil
}
