package check

import (
	"strconv"
)

// Code identifies the outcome of a validation.
//
// The numeric values are stable and double as the process exit status of the zipcheck command, so new codes must
// only ever be appended.
type Code int

const (
	OK Code = iota
	ArgumentsInvalid
	FileOpenError
	MagicNumberMismatch
	HeaderSignatureMismatch
	// HeaderReadError is reserved as an umbrella for the field-specific read errors and is never returned.
	HeaderReadError
	HeaderSignatureReadError
	VersionNeededReadError
	FlagsReadError
	CompressionMethodReadError
	LastModTimeReadError
	LastModDateReadError
	Crc32ReadError
	CompressedSizeReadError
	UncompressedSizeReadError
	FileNameLengthReadError
	ExtraFieldLengthReadError
	ReadFailure
	ChecksumMismatch
	PayloadDecodeError
)

var codeNames = [...]string{
	OK:                         "OK",
	ArgumentsInvalid:           "ArgumentsInvalid",
	FileOpenError:              "FileOpenError",
	MagicNumberMismatch:        "MagicNumberMismatch",
	HeaderSignatureMismatch:    "HeaderSignatureMismatch",
	HeaderReadError:            "HeaderReadError",
	HeaderSignatureReadError:   "HeaderSignatureReadError",
	VersionNeededReadError:     "VersionNeededReadError",
	FlagsReadError:             "FlagsReadError",
	CompressionMethodReadError: "CompressionMethodReadError",
	LastModTimeReadError:       "LastModTimeReadError",
	LastModDateReadError:       "LastModDateReadError",
	Crc32ReadError:             "Crc32ReadError",
	CompressedSizeReadError:    "CompressedSizeReadError",
	UncompressedSizeReadError:  "UncompressedSizeReadError",
	FileNameLengthReadError:    "FileNameLengthReadError",
	ExtraFieldLengthReadError:  "ExtraFieldLengthReadError",
	ReadFailure:                "ReadFailure",
	ChecksumMismatch:           "ChecksumMismatch",
	PayloadDecodeError:         "PayloadDecodeError",
}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}

	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// Result is the outcome of a single validation.
type Result struct {
	// Code is the named outcome. OK is the only success.
	Code Code

	// Message is the human-readable explanation paired with Code.
	//
	// For field read errors, Message is the name of the Code while Err carries the details.
	Message string

	// Header contains the fields that were decoded before validation stopped.
	//
	// Use Decoded to tell which fields are meaningful.
	Header LocalFileHeader

	// Decoded is the number of header fields that were successfully read, between 0 and NumFields.
	Decoded int

	// Err is the underlying error for any Code other than OK.
	Err error
}

// OK returns true if the validation passed.
func (r Result) OK() bool {
	return r.Code == OK
}

// MethodDecoded returns true if the compression method field was read, in which case Header.MethodName is
// meaningful.
func (r Result) MethodDecoded() bool {
	return r.Decoded > int(FieldMethod)
}

func (r Result) String() string {
	return r.Message + " " + strconv.Itoa(int(r.Code))
}
