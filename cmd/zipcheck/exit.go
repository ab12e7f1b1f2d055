//go:build !windows

package main

import (
	"os"

	"github.com/nguyengg/zipcheck/zip/check"
)

func exit(code check.Code) {
	os.Exit(int(code))
}
