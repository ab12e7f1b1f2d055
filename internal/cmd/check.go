package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/mholt/archives"
	"github.com/nguyengg/zipcheck/internal"
	"github.com/nguyengg/zipcheck/internal/config"
	"github.com/nguyengg/zipcheck/internal/source"
	"github.com/nguyengg/zipcheck/zip/check"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Check validates the first local file header of a single ZIP file.
type Check struct {
	Profile       string `short:"p" long:"profile" description:"override AWS profile for s3:// sources"`
	Verify        bool   `long:"verify" description:"decompress the first entry and verify its CRC-32"`
	MaxVerifySize string `long:"max-verify-size" description:"skip verification if the first entry's compressed size is larger than this" default-mask:"1GiB"`
	Quiet         bool   `short:"q" long:"quiet" description:"do not log progress and diagnostics to stderr"`

	Args struct {
		File flags.Filename `positional-arg-name:"file" description:"the ZIP file to check; can also be s3://bucket/key" required:"yes"`
	} `positional-args:"yes"`

	// Loader is used to load .zipcheck configuration.
	//
	// By default, config.DefaultLoader is used and .zipcheck is searched for from the working directory upwards.
	Loader *config.Loader `no-flag:"true"`

	// NewOpener can be used to override how sources are opened.
	NewOpener func(ctx context.Context, loader *config.Loader) func(name string) (io.ReadSeekCloser, error) `no-flag:"true"`
}

// NewParser returns a parser that parses command-line arguments into c.
func NewParser(c *Check, options flags.Options) *flags.Parser {
	p := flags.NewParser(c, options)
	p.Name = "zipcheck"
	p.Usage = "[OPTIONS] <file>"
	p.LongDescription = "Checks that a file starts with a well-formed ZIP local file header. The exit code is 0 if " +
		"the file is valid, or a code identifying the check that failed."
	return p
}

// Run validates the file given in c.Args.File.
//
// The processing notice, compression method, and result are written to stdout while diagnostics are logged to
// stderr. The returned code should be used as the exit status.
func (c *Check) Run(ctx context.Context, stdout, stderr io.Writer) check.Code {
	name := string(c.Args.File)

	logger := internal.NewLogger(stderr, name)
	if c.Quiet {
		logger.SetOutput(io.Discard)
	}

	loader := c.Loader
	if loader == nil {
		loader = config.DefaultLoader
		if path, err := loader.Load(ctx); err != nil {
			logger.Printf("load config error: %v", err)
		} else if path != "" {
			logger.Printf("using config %s", path)
		}
	}
	if c.Profile != "" {
		loader.Profile = c.Profile
	}

	cfg, err := loader.ForCheck()
	if err != nil {
		logger.Printf("invalid config, using defaults: %v", err)
	}

	maxVerifyBytes := check.DefaultMaxVerifyBytes
	if cfg.MaxVerifyBytes > 0 {
		maxVerifyBytes = cfg.MaxVerifyBytes
	}
	if c.MaxVerifySize != "" {
		n, err := humanize.ParseBytes(c.MaxVerifySize)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "invalid --max-verify-size %q: %v\n", c.MaxVerifySize, err)
			return check.ArgumentsInvalid
		}

		maxVerifyBytes = int64(n)
	}

	open := (&source.Opener{Ctx: ctx, Loader: loader}).Open
	if c.NewOpener != nil {
		open = c.NewOpener(ctx, loader)
	}

	_, _ = fmt.Fprintf(stdout, "processing %s\n", name)

	var bar *progressbar.ProgressBar
	res := check.ValidateFile(name, func(opts *check.Options) {
		opts.Logger = logger
		opts.Open = open
		opts.VerifyChecksum = c.Verify || cfg.VerifyChecksum
		opts.MaxVerifyBytes = maxVerifyBytes
		if f, ok := stderr.(*os.File); ok && !c.Quiet && term.IsTerminal(int(f.Fd())) {
			opts.Progress = func(size int64) io.Writer {
				bar = internal.DefaultBytes(stderr, size, "verifying")
				return bar
			}
		}
	})
	if bar != nil {
		_ = bar.Close()
	}

	if res.MethodDecoded() {
		_, _ = fmt.Fprintln(stdout, res.Header.MethodName())
	}

	switch res.Code {
	case check.OK:
	case check.MagicNumberMismatch:
		identify(ctx, logger, open, name)
		fallthrough
	default:
		logger.Printf("%s: %v", res.Code, res.Err)
	}

	_, _ = fmt.Fprintln(stdout, res)
	return res.Code
}

// identify logs a hint about what the file might be if it isn't a ZIP file.
func identify(ctx context.Context, logger *log.Logger, open func(string) (io.ReadSeekCloser, error), name string) {
	src, err := open(name)
	if err != nil {
		logger.Printf("reopen file error: %v", err)
		return
	}
	defer src.Close()

	// the name is not passed so that only the content is used.
	format, _, err := archives.Identify(ctx, "", src)
	switch {
	case errors.Is(err, archives.NoMatch):
		logger.Printf("file is not a recognised archive or compressed format")
	case err != nil:
		logger.Printf("identify format error: %v", err)
	default:
		logger.Printf("file looks like %s instead", format.Extension())
	}
}
