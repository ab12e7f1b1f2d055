package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-ini/ini"
)

// FileName is the name of the configuration file that Load looks for.
const FileName = ".zipcheck"

// Loader can be used for loading .zipcheck configuration as well as overridden with default settings.
type Loader struct {
	// Profile is the AWS profile to use, taking precedence over bucket-based AWS profile setting.
	Profile string

	cfg           *ini.File
	s3clientCache sync.Map
}

// Load will traverse the directory hierarchy upwards to find the first ".zipcheck" file available and load its
// contents into the Loader.
//
// The name of the .zipcheck file is returned, or an empty string if none was found.
func (l *Loader) Load(ctx context.Context) (string, error) {
	cur, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		path := filepath.Join(cur, FileName)
		fi, err := os.Stat(path)
		switch {
		case err == nil && !fi.IsDir():
			return path, l.LoadFile(path)
		case err == nil, os.IsNotExist(err):
			parent := filepath.Dir(cur)
			if parent == cur || parent == "." {
				return "", nil
			}

			cur = parent
		default:
			return "", err
		}
	}
}

// LoadFile loads the contents of the given file into the Loader.
//
// On error, the Loader is left with an empty configuration.
func (l *Loader) LoadFile(path string) (err error) {
	if l.cfg, err = ini.Load(path); err != nil {
		l.cfg = ini.Empty()
	}

	return err
}

// LoadProfile is a convenient method to set Loader.Profile then call Load.
func (l *Loader) LoadProfile(ctx context.Context, profile string) (string, error) {
	l.Profile = profile
	return l.Load(ctx)
}

// NewLoader returns a Loader with an empty configuration.
func NewLoader() *Loader {
	return &Loader{cfg: ini.Empty()}
}

// DefaultLoader is the default Loader instance for package-level methods.
var DefaultLoader = NewLoader()

// Load calls Loader.Load on the DefaultLoader instance.
func Load(ctx context.Context) (string, error) {
	return DefaultLoader.Load(ctx)
}

// LoadProfile calls Loader.LoadProfile on the DefaultLoader instance.
func LoadProfile(ctx context.Context, profile string) (string, error) {
	return DefaultLoader.LoadProfile(ctx, profile)
}
