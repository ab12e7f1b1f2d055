package cmd

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipcheck/internal/config"
	"github.com/nguyengg/zipcheck/zip/check"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, h check.LocalFileHeader, name string, payload []byte) string {
	t.Helper()

	h.Signature = check.Signature
	h.FileNameLength = uint16(len(name))

	b := &bytes.Buffer{}
	require.NoError(t, binary.Write(b, binary.LittleEndian, h))
	b.WriteString(name)
	b.Write(payload)

	path := filepath.Join(t.TempDir(), "test.zip")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0644))
	return path
}

func run(t *testing.T, c *Check, file string) (check.Code, string, string) {
	t.Helper()

	if c.Loader == nil {
		c.Loader = config.NewLoader()
	}
	c.Args.File = flags.Filename(file)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := c.Run(context.Background(), stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheck_Run(t *testing.T) {
	content := []byte("hello, world!")
	valid := writeZip(t, check.LocalFileHeader{
		Method:           0,
		CRC32:            crc32.ChecksumIEEE(content),
		CompressedSize:   uint32(len(content)),
		UncompressedSize: uint32(len(content)),
	}, "hello.txt", content)

	code, stdout, _ := run(t, &Check{}, valid)
	assert.Equal(t, check.OK, code)
	assert.Equal(t, "processing "+valid+"\nno compression\nthe file is a valid ZIP file 0\n", stdout)

	code, _, stderr := run(t, &Check{Verify: true}, valid)
	assert.Equal(t, check.OK, code)
	assert.Contains(t, stderr, "verified crc-32")
}

func TestCheck_Run_Failures(t *testing.T) {
	deflated := writeZip(t, check.LocalFileHeader{Method: 8, CompressedSize: 100}, "a.txt", []byte("too short"))
	code, stdout, _ := run(t, &Check{}, deflated)
	assert.Equal(t, check.ReadFailure, code)
	assert.Equal(t, "processing "+deflated+"\ndeflated\nfailed to seek in file 17\n", stdout)

	missing := filepath.Join(t.TempDir(), "missing.zip")
	code, stdout, _ = run(t, &Check{}, missing)
	assert.Equal(t, check.FileOpenError, code)
	assert.Equal(t, "processing "+missing+"\ncould not open file 2\n", stdout)

	truncated := filepath.Join(t.TempDir(), "truncated.zip")
	require.NoError(t, os.WriteFile(truncated, []byte("PK\x03\x04\x14\x00"), 0644))
	code, stdout, _ = run(t, &Check{}, truncated)
	assert.Equal(t, check.FlagsReadError, code)
	assert.Contains(t, stdout, "\nFlagsReadError 8\n")
	assert.NotContains(t, stdout, "no compression")
}

func TestCheck_Run_Identify(t *testing.T) {
	b := &bytes.Buffer{}
	w := gzip.NewWriter(b)
	_, err := w.Write([]byte("definitely not a zip file"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "actually.zip")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0644))

	code, stdout, stderr := run(t, &Check{}, path)
	assert.Equal(t, check.MagicNumberMismatch, code)
	assert.Contains(t, stdout, "incorrect magic number 3\n")
	assert.Contains(t, stderr, "gz")

	// quiet suppresses diagnostics but not the result.
	code, stdout, stderr = run(t, &Check{Quiet: true}, path)
	assert.Equal(t, check.MagicNumberMismatch, code)
	assert.Contains(t, stdout, "incorrect magic number 3\n")
	assert.Empty(t, stderr)
}

func TestCheck_Run_Config(t *testing.T) {
	content := []byte("hello, world!")
	path := writeZip(t, check.LocalFileHeader{
		CRC32:            crc32.ChecksumIEEE(content) + 1,
		CompressedSize:   uint32(len(content)),
		UncompressedSize: uint32(len(content)),
	}, "hello.txt", content)

	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("[check]\nverify-checksum = yes\n"), 0644))
	loader := config.NewLoader()
	require.NoError(t, loader.LoadFile(cfgPath))

	code, _, _ := run(t, &Check{Loader: loader}, path)
	assert.Equal(t, check.ChecksumMismatch, code)

	// the flag lowers the size limit so verification is skipped.
	code, _, stderr := run(t, &Check{Loader: loader, MaxVerifySize: "4B"}, path)
	assert.Equal(t, check.OK, code)
	assert.Contains(t, stderr, "exceeds limit")

	code, _, _ = run(t, &Check{MaxVerifySize: "a lot"}, path)
	assert.Equal(t, check.ArgumentsInvalid, code)
}

func TestCheck_Run_Opener(t *testing.T) {
	c := &Check{
		NewOpener: func(context.Context, *config.Loader) func(string) (io.ReadSeekCloser, error) {
			return func(name string) (io.ReadSeekCloser, error) {
				assert.Equal(t, "s3://bucket/key.zip", name)
				return nil, errors.New("access denied")
			}
		},
	}

	code, stdout, stderr := run(t, c, "s3://bucket/key.zip")
	assert.Equal(t, check.FileOpenError, code)
	assert.Contains(t, stdout, "could not open file 2")
	assert.Contains(t, stderr, "access denied")
}

func TestNewParser(t *testing.T) {
	c := &Check{}
	_, err := NewParser(c, flags.None).ParseArgs([]string{})

	var fe *flags.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, flags.ErrRequired, fe.Type)

	c = &Check{}
	_, err = NewParser(c, flags.None).ParseArgs([]string{"--verify", "-p", "readonly", "--max-verify-size", "64MiB", "file.zip"})
	require.NoError(t, err)
	assert.True(t, c.Verify)
	assert.Equal(t, "readonly", c.Profile)
	assert.Equal(t, "64MiB", c.MaxVerifySize)
	assert.Equal(t, flags.Filename("file.zip"), c.Args.File)
}
