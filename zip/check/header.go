package check

import (
	"encoding/binary"
	"time"
)

const (
	// Signature is the local file header signature, "PK\x03\x04" read as a little-endian uint32.
	Signature = 0x04034b50

	// HeaderLen is the length of the fixed-size part of the local file header.
	HeaderLen = 30
)

// Magic is the byte sequence every ZIP archive that isn't self-extracting starts with.
var Magic = [4]byte{0x50, 0x4b, 0x03, 0x04}

// LocalFileHeader is the fixed-size part of a ZIP local file header.
type LocalFileHeader struct {
	Signature        uint32
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FileNameLength   uint16
	ExtraFieldLength uint16
}

// Flag bits consulted during payload verification.
const (
	FlagEncrypted      = 0x1
	FlagDataDescriptor = 0x8
)

// MethodName returns the human-readable name of the compression method.
func (h LocalFileHeader) MethodName() string {
	return MethodName(h.Method)
}

// Modified converts the MS-DOS modified date and time into a time.Time with 2s resolution.
//
// See https://learn.microsoft.com/en-us/windows/win32/api/winbase/nf-winbase-dosdatetimetofiletime.
func (h LocalFileHeader) Modified() time.Time {
	return time.Date(
		// date bits 0-4: day of month; 5-8: month; 9-15: years since 1980
		int(h.ModifiedDate>>9+1980),
		time.Month(h.ModifiedDate>>5&0xf),
		int(h.ModifiedDate&0x1f),

		// time bits 0-4: second/2; 5-10: minute; 11-15: hour
		int(h.ModifiedTime>>11),
		int(h.ModifiedTime>>5&0x3f),
		int(h.ModifiedTime&0x1f*2),
		0, // nanoseconds

		time.UTC,
	)
}

// trailerLen is the number of bytes that must follow the fixed-size header: file name, extra field, and compressed
// data.
func (h LocalFileHeader) trailerLen() int64 {
	return int64(h.FileNameLength) + int64(h.ExtraFieldLength) + int64(h.CompressedSize)
}

// Field identifies one of the fields of the fixed-size local file header, in the order they appear.
type Field int

const (
	FieldSignature Field = iota
	FieldVersionNeeded
	FieldFlags
	FieldMethod
	FieldModifiedTime
	FieldModifiedDate
	FieldCRC32
	FieldCompressedSize
	FieldUncompressedSize
	FieldFileNameLength
	FieldExtraFieldLength

	// NumFields is the number of fields in the fixed-size local file header.
	NumFields = int(iota)
)

// fieldDecoder describes how to decode a Field and which Code a short read maps to.
type fieldDecoder struct {
	name  string
	width int
	code  Code
	set   func(h *LocalFileHeader, b []byte)
}

var fields = [NumFields]fieldDecoder{
	FieldSignature: {"signature", 4, HeaderSignatureReadError, func(h *LocalFileHeader, b []byte) {
		h.Signature = binary.LittleEndian.Uint32(b)
	}},
	FieldVersionNeeded: {"version needed to extract", 2, VersionNeededReadError, func(h *LocalFileHeader, b []byte) {
		h.VersionNeeded = binary.LittleEndian.Uint16(b)
	}},
	FieldFlags: {"general purpose bit flag", 2, FlagsReadError, func(h *LocalFileHeader, b []byte) {
		h.Flags = binary.LittleEndian.Uint16(b)
	}},
	FieldMethod: {"compression method", 2, CompressionMethodReadError, func(h *LocalFileHeader, b []byte) {
		h.Method = binary.LittleEndian.Uint16(b)
	}},
	FieldModifiedTime: {"last mod file time", 2, LastModTimeReadError, func(h *LocalFileHeader, b []byte) {
		h.ModifiedTime = binary.LittleEndian.Uint16(b)
	}},
	FieldModifiedDate: {"last mod file date", 2, LastModDateReadError, func(h *LocalFileHeader, b []byte) {
		h.ModifiedDate = binary.LittleEndian.Uint16(b)
	}},
	FieldCRC32: {"crc-32", 4, Crc32ReadError, func(h *LocalFileHeader, b []byte) {
		h.CRC32 = binary.LittleEndian.Uint32(b)
	}},
	FieldCompressedSize: {"compressed size", 4, CompressedSizeReadError, func(h *LocalFileHeader, b []byte) {
		h.CompressedSize = binary.LittleEndian.Uint32(b)
	}},
	FieldUncompressedSize: {"uncompressed size", 4, UncompressedSizeReadError, func(h *LocalFileHeader, b []byte) {
		h.UncompressedSize = binary.LittleEndian.Uint32(b)
	}},
	FieldFileNameLength: {"file name length", 2, FileNameLengthReadError, func(h *LocalFileHeader, b []byte) {
		h.FileNameLength = binary.LittleEndian.Uint16(b)
	}},
	FieldExtraFieldLength: {"extra field length", 2, ExtraFieldLengthReadError, func(h *LocalFileHeader, b []byte) {
		h.ExtraFieldLength = binary.LittleEndian.Uint16(b)
	}},
}

func (f Field) String() string {
	if f >= 0 && int(f) < NumFields {
		return fields[f].name
	}

	return "unknown field"
}

// Code returns the Code that a short read of this field maps to.
func (f Field) Code() Code {
	if f >= 0 && int(f) < NumFields {
		return fields[f].code
	}

	return HeaderReadError
}

// Width returns the width of the field in bytes.
func (f Field) Width() int {
	if f >= 0 && int(f) < NumFields {
		return fields[f].width
	}

	return 0
}

// Offset returns the offset of the field from the start of the local file header.
func (f Field) Offset() (off int) {
	for i := Field(0); i < f && int(i) < NumFields; i++ {
		off += fields[i].width
	}
	return
}

// MethodName returns the human-readable name of the ZIP compression method, or "unknown".
//
// See section 4.4.5 of https://pkware.cachefly.net/webdocs/casestudies/APPNOTE.TXT.
func MethodName(method uint16) string {
	switch method {
	case 0:
		return "no compression"
	case 1:
		return "shrunk"
	case 2:
		return "reduced with compression factor 1"
	case 3:
		return "reduced with compression factor 2"
	case 4:
		return "reduced with compression factor 3"
	case 5:
		return "reduced with compression factor 4"
	case 6:
		return "imploded"
	case 8:
		return "deflated"
	case 9:
		return "enhanced deflated"
	case 10:
		return "PKWare DCL imploded"
	case 12:
		return "compressed using BZIP2"
	case 14:
		return "LZMA"
	case 7, 11, 13, 15, 16, 17:
		return "reserved"
	case 18:
		return "compressed using IBM TERSE"
	case 19:
		return "IBM LZ77 z"
	case 93:
		return "Zstandard"
	case 95:
		return "XZ"
	case 98:
		return "PPMd version I, Rev 1"
	default:
		return "unknown"
	}
}
