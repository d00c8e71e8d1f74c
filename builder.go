// File: lixenwraith/lconfig/builder.go
package lconfig

import (
	"fmt"
	"io"

	"github.com/agilira/go-errors"
	"github.com/rs/zerolog"
)

// ValidatorFunc checks a loaded file. It runs at the end of Build.
type ValidatorFunc func(f *DataFile) error

type structDefaults struct {
	scope    Scope
	defaults any
}

// Builder provides a fluent interface for loading LCONFIG files
type Builder struct {
	opts         LoadOptions
	file         string
	reader       io.Reader
	defaultsFile string
	discovery    *DiscoveryOptions
	defaults     []structDefaults
	err          error
	validators   []ValidatorFunc
}

// NewBuilder creates a new builder with DefaultLoadOptions
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultLoadOptions(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithFile sets the LCONFIG file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithReader reads from r instead of a file
func (b *Builder) WithReader(r io.Reader) *Builder {
	b.reader = r
	return b
}

// WithData selects whether the sample block is read
func (b *Builder) WithData(read bool) *Builder {
	b.opts.ReadData = read
	return b
}

// WithCalibration sets the calibration applied after loading
func (b *Builder) WithCalibration(mode CalibrationMode) *Builder {
	b.opts.Calibration = mode
	return b
}

// WithMaxWordLength caps header words in bytes
func (b *Builder) WithMaxWordLength(n int) *Builder {
	if n < 0 {
		b.err = errors.New(ErrCodeInvalidArgument, fmt.Sprintf("max word length must not be negative, got %d", n))
	}
	b.opts.MaxWordLength = n
	return b
}

// WithMaxFileSize rejects files larger than n bytes
func (b *Builder) WithMaxFileSize(n int64) *Builder {
	b.opts.MaxFileSize = n
	return b
}

// WithSchema parses with s. Defaults overrides from the builder are applied
// to a copy, so s and files already loaded with it are left unchanged.
func (b *Builder) WithSchema(s *Schema) *Builder {
	b.opts.Schema = s
	return b
}

// WithDefaultsFile overrides schema defaults from a TOML, YAML or JSON file
func (b *Builder) WithDefaultsFile(path string) *Builder {
	b.defaultsFile = path
	return b
}

// WithDefaultsDiscovery searches for a defaults file when none was given explicitly
func (b *Builder) WithDefaultsDiscovery(opts DiscoveryOptions) *Builder {
	b.discovery = &opts
	return b
}

// WithDefaults overrides defaults of one scope from a struct (see Schema.RegisterStruct)
func (b *Builder) WithDefaults(scope Scope, defaults any) *Builder {
	b.defaults = append(b.defaults, structDefaults{scope: scope, defaults: defaults})
	return b
}

// WithLogger sets the logger for load events
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.opts.Logger = logger
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build prepares the schema, loads the file and runs the validators
func (b *Builder) Build() (*DataFile, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.file == "" && b.reader == nil {
		return nil, errors.New(ErrCodeInvalidArgument, "no file or reader given")
	}

	defaultsFile := b.defaultsFile
	if defaultsFile == "" && b.discovery != nil {
		defaultsFile = DiscoverDefaultsFile(*b.discovery)
	}

	opts := b.opts
	switch {
	case opts.Schema == nil:
		opts.Schema = DefaultSchema()
	case defaultsFile != "" || len(b.defaults) > 0:
		opts.Schema = opts.Schema.Clone()
	}
	if defaultsFile != "" {
		if err := opts.Schema.LoadDefaultsFile(defaultsFile); err != nil {
			return nil, err
		}
		opts.Logger.Debug().Str("defaults", defaultsFile).Msg("schema defaults loaded")
	}

	for _, sd := range b.defaults {
		if err := opts.Schema.RegisterStruct(sd.scope, sd.defaults); err != nil {
			return nil, errors.Wrap(err, ErrCodeInvalidDefaults, fmt.Sprintf("failed to register %s defaults", sd.scope))
		}
	}

	var (
		f   *DataFile
		err error
	)
	if b.reader != nil {
		f, err = LoadReader(b.reader, opts)
	} else {
		f, err = LoadFile(b.file, opts)
	}
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(f); err != nil {
			return nil, errors.Wrap(err, ErrCodeValidationFailed, "configuration validation failed")
		}
	}
	return f, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *DataFile {
	f, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("lconfig build failed: %v", err))
	}
	return f
}

// BuildAndScan builds and decodes the device-scope parameters of device dev into target
func (b *Builder) BuildAndScan(dev int, target any) (*DataFile, error) {
	f, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := f.ScanDevice(dev, target); err != nil {
		return nil, err
	}
	return f, nil
}
