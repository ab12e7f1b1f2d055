package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipcheck/internal/cmd"
	"github.com/nguyengg/zipcheck/zip/check"
)

func main() {
	c := &cmd.Check{}

	p := cmd.NewParser(c, flags.Default)
	if _, err := p.Parse(); err != nil {
		if flags.WroteHelp(err) {
			exit(check.OK)
		}

		p.WriteHelp(os.Stderr)
		exit(check.ArgumentsInvalid)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := c.Run(ctx, os.Stdout, os.Stderr)
	stop()

	exit(code)
}
