//go:build windows

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/nguyengg/zipcheck/zip/check"
	"golang.org/x/term"
)

func exit(code check.Code) {
	// need this on window to keep the console open.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		_, _ = fmt.Fprintf(os.Stderr, "Press any key to close console\n")
		r := bufio.NewReader(os.Stdin)
		_, _, _ = r.ReadRune()
	}

	os.Exit(int(code))
}
