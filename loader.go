// FILE: lixenwraith/lconfig/loader.go
package lconfig

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/rs/zerolog"
)

// LoadOptions configures how an LCONFIG file is read
type LoadOptions struct {
	// ReadData reads the sample block after the header terminator.
	// When false only the header is parsed.
	ReadData bool

	// Calibration is applied to the samples once they are read.
	// Default: CalibrateCopy
	Calibration CalibrationMode

	// MaxWordLength caps header words in bytes (0 = DefaultMaxWordLength)
	MaxWordLength int

	// MaxFileSize rejects larger files before reading them (0 = no limit)
	MaxFileSize int64

	// PreventPathTraversal rejects relative paths that climb out of the working directory
	PreventPathTraversal bool

	// Schema resolves keywords and defaults. nil selects DefaultSchema().
	Schema *Schema

	// Logger receives debug and warning events. Default: zerolog.Nop()
	Logger zerolog.Logger
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		ReadData:    true,
		Calibration: CalibrateCopy,
		Logger:      zerolog.Nop(),
	}
}

// LoadFile reads an LCONFIG file from disk.
// The file is closed on every return path.
func LoadFile(path string, opts LoadOptions) (*DataFile, error) {
	if opts.PreventPathTraversal {
		cleanPath := filepath.Clean(path)
		if strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) || cleanPath == ".." {
			return nil, errors.New(ErrCodeInvalidArgument, fmt.Sprintf("potential path traversal detected in path: %s", path)).
				WithContext("path", path)
		}
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New(ErrCodeFileNotFound, fmt.Sprintf("failed to open the data file: %s", path)).
				WithContext("path", path)
		}
		return nil, errors.Wrap(err, ErrCodeIO, fmt.Sprintf("failed to stat file '%s'", path)).
			WithContext("path", path)
	}
	if fileInfo.IsDir() {
		return nil, errors.New(ErrCodeInvalidArgument, fmt.Sprintf("'%s' is a directory", path)).
			WithContext("path", path)
	}
	if opts.MaxFileSize > 0 && fileInfo.Size() > opts.MaxFileSize {
		return nil, errors.New(ErrCodeInvalidArgument,
			fmt.Sprintf("file '%s' exceeds maximum size %d bytes", path, opts.MaxFileSize)).
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIO, fmt.Sprintf("failed to open file '%s'", path)).
			WithContext("path", path)
	}
	defer file.Close()

	var reader io.Reader = file
	if opts.MaxFileSize > 0 {
		reader = io.LimitReader(file, opts.MaxFileSize)
	}

	opts.Logger = opts.Logger.With().Str("path", path).Logger()
	f, err := LoadReader(reader, opts)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// LoadReader parses an LCONFIG stream: the header, then the data block
// when opts.ReadData is set and the header ends with "##".
// On error no partial result is returned.
func LoadReader(r io.Reader, opts LoadOptions) (*DataFile, error) {
	schema := opts.Schema
	if schema == nil {
		schema = DefaultSchema()
	}
	logger := opts.Logger.With().Str("component", "lconfig").Logger()

	tok := NewTokenizer(r, opts.MaxWordLength)
	parser := newStanzaParser(schema, logger)
	ended, err := parser.parseHeader(tok)
	if err != nil {
		return nil, err
	}

	f := &DataFile{
		Config: &Config{Devices: parser.devices, schema: schema},
	}
	logger.Debug().
		Int("devices", len(f.Devices)).
		Bool("terminated", ended).
		Msg("header parsed")

	if !opts.ReadData {
		return f, nil
	}
	if !ended {
		logger.Debug().Msg("header has no data block")
		return f, nil
	}

	ncol := 0
	if len(f.Devices) > 0 {
		ncol = len(f.Devices[0].AI)
	}
	block, err := readDataBlock(tok.Reader(), tok.Line(), ncol, logger)
	if err != nil {
		return nil, err
	}
	f.hasData = true
	f.rows = block.rows
	f.raw = block.samples
	f.Start = block.start

	if opts.Calibration != CalibrateNone {
		if err := f.ApplyCalibration(opts.Calibration); err != nil {
			return nil, err
		}
	}
	return f, nil
}
