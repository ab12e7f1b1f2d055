package internal

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/nguyengg/zipcheck/util"
)

// Prefix creates a consistent log prefix for the given file.
func Prefix(name string) string {
	return fmt.Sprintf(`"%s" - `, util.TruncateRightWithSuffix(filepath.Base(name), 30, "..."))
}

// NewLogger creates a new logger that writes to w using Prefix.
func NewLogger(w io.Writer, name string) *log.Logger {
	return log.New(w, Prefix(name), 0)
}
