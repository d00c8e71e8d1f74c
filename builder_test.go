// FILE: lixenwraith/lconfig/builder_test.go
package lconfig

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuilder tests the builder pattern
func TestBuilder(t *testing.T) {
	t.Run("FromReader", func(t *testing.T) {
		f, err := NewBuilder().
			WithReader(strings.NewReader(scenario)).
			Build()
		require.NoError(t, err)
		assert.Equal(t, 3, f.NData())
		assert.Equal(t, "", f.Path)
	})

	t.Run("FromFile", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "run.dat", scenario)
		f, err := NewBuilder().
			WithFile(path).
			WithMaxFileSize(1 << 20).
			WithMaxWordLength(32).
			Build()
		require.NoError(t, err)
		assert.Equal(t, path, f.Path)
	})

	t.Run("NoSource", func(t *testing.T) {
		_, err := NewBuilder().Build()
		assert.True(t, HasCode(err, ErrCodeInvalidArgument))
	})

	t.Run("NegativeWordLength", func(t *testing.T) {
		_, err := NewBuilder().
			WithReader(strings.NewReader(scenario)).
			WithMaxWordLength(-1).
			Build()
		assert.True(t, HasCode(err, ErrCodeInvalidArgument))
	})

	t.Run("HeaderOnly", func(t *testing.T) {
		f, err := NewBuilder().
			WithReader(strings.NewReader(scenario)).
			WithData(false).
			Build()
		require.NoError(t, err)
		assert.False(t, f.HasData())
	})

	t.Run("Calibration", func(t *testing.T) {
		f, err := NewBuilder().
			WithReader(strings.NewReader(scenario)).
			WithCalibration(CalibrateInPlace).
			Build()
		require.NoError(t, err)
		assert.Equal(t, CalibrateInPlace, f.Calibration())
	})

	t.Run("Logger", func(t *testing.T) {
		var buf strings.Builder
		logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

		_, err := NewBuilder().
			WithReader(strings.NewReader(scenario)).
			WithLogger(logger).
			Build()
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"component":"lconfig"`)
		assert.Contains(t, buf.String(), "header parsed")
		assert.Contains(t, buf.String(), "data block read")
	})

	t.Run("BadTimestampIsLogged", func(t *testing.T) {
		var buf strings.Builder
		logger := zerolog.New(&buf).Level(zerolog.WarnLevel)

		f, err := NewBuilder().
			WithReader(strings.NewReader("connection usb\naichannel 0\n##\n#:someday\n1\n")).
			WithLogger(logger).
			Build()
		require.NoError(t, err)
		assert.False(t, f.Start.Valid)
		assert.Contains(t, buf.String(), "unparseable start timestamp")
		assert.NotContains(t, buf.String(), "header parsed")
	})
}

func TestBuilderDefaults(t *testing.T) {
	const noRate = "connection usb\naichannel 0\n##\n1\n2\n"

	t.Run("DefaultsFile", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "defaults.toml", "[device]\nsamplehz = 50.0\n")
		f, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithDefaultsFile(path).
			Build()
		require.NoError(t, err)

		tv, err := f.Time()
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0.02}, tv)
	})

	t.Run("MissingDefaultsFile", func(t *testing.T) {
		_, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithDefaultsFile(filepath.Join(t.TempDir(), "none.toml")).
			Build()
		assert.True(t, HasCode(err, ErrCodeDefaultsNotFound))
	})

	t.Run("Discovery", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "defaults.yaml", "ai:\n  aicalslope: 3\n")

		opts := isolatedDiscovery()
		opts.Paths = []string{dir}
		f, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithDefaultsDiscovery(opts).
			Build()
		require.NoError(t, err)

		v, err := f.Channel(ChannelIndex(0))
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 6}, v)
	})

	t.Run("ExplicitFileBeatsDiscovery", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "defaults.yaml", "ai:\n  aicalslope: 3\n")
		explicit := writeFile(t, t.TempDir(), "mine.json", `{"ai": {"aicalslope": 5}}`)

		opts := isolatedDiscovery()
		opts.Paths = []string{dir}
		f, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithDefaultsDiscovery(opts).
			WithDefaultsFile(explicit).
			Build()
		require.NoError(t, err)

		slope, err := f.Float64(0, "aicalslope", ChannelIndex(0))
		require.NoError(t, err)
		assert.Equal(t, 5.0, slope)
	})

	t.Run("StructDefaults", func(t *testing.T) {
		type deviceDefaults struct {
			SampleHz float64 `lconfig:"samplehz"`
			NSample  int     `lconfig:"nsample"`
		}
		type aiDefaults struct {
			Units string `lconfig:"aicalunits"`
		}

		f, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithDefaults(ScopeDevice, deviceDefaults{SampleHz: 100}).
			WithDefaults(ScopeAI, &aiDefaults{Units: "degC"}).
			Build()
		require.NoError(t, err)

		hz, err := f.SampleRate(0)
		require.NoError(t, err)
		assert.Equal(t, 100.0, hz)

		n, err := f.Int(0, "nsample")
		require.NoError(t, err)
		assert.Equal(t, 64, n, "zero field keeps builtin default")

		units, err := f.String(0, "aicalunits", ChannelIndex(0))
		require.NoError(t, err)
		assert.Equal(t, "degC", units)
	})

	t.Run("BadStructDefaults", func(t *testing.T) {
		type wrong struct {
			Gain float64 `lconfig:"aigain"`
		}
		_, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithDefaults(ScopeAI, wrong{Gain: 2}).
			Build()
		assert.True(t, HasCode(err, ErrCodeInvalidDefaults))
	})

	t.Run("SharedSchema", func(t *testing.T) {
		s := DefaultSchema()
		f, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithSchema(s).
			Build()
		require.NoError(t, err)
		assert.Same(t, s, f.Schema())
	})

	t.Run("OverridesLeaveCallerSchemaAlone", func(t *testing.T) {
		s := DefaultSchema()
		earlier, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithSchema(s).
			Build()
		require.NoError(t, err)

		path := writeFile(t, t.TempDir(), "defaults.toml", "[ai]\naicalunits = \"mV\"\n")
		later, err := NewBuilder().
			WithReader(strings.NewReader(noRate)).
			WithSchema(s).
			WithDefaultsFile(path).
			WithDefaults(ScopeDevice, struct {
				SampleHz float64 `lconfig:"samplehz"`
			}{SampleHz: 8}).
			Build()
		require.NoError(t, err)
		assert.NotSame(t, s, later.Schema())

		hz, err := later.SampleRate(0)
		require.NoError(t, err)
		assert.Equal(t, 8.0, hz)
		units, err := later.String(0, "aicalunits", ChannelIndex(0))
		require.NoError(t, err)
		assert.Equal(t, "mV", units)

		_, ok := s.Default("samplehz")
		assert.False(t, ok)
		units, err = earlier.String(0, "aicalunits", ChannelIndex(0))
		require.NoError(t, err)
		assert.Equal(t, "V", units)
		_, err = earlier.SampleRate(0)
		assert.True(t, HasCode(err, ErrCodeSampleRateUnset))
	})
}

func TestBuilderValidation(t *testing.T) {
	t.Run("RunsInOrder", func(t *testing.T) {
		var order []string
		_, err := NewBuilder().
			WithReader(strings.NewReader(scenario)).
			WithValidator(func(*DataFile) error { order = append(order, "first"); return nil }).
			WithValidator(nil).
			WithValidator(func(*DataFile) error { order = append(order, "second"); return nil }).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("FailureStopsBuild", func(t *testing.T) {
		called := false
		f, err := NewBuilder().
			WithReader(strings.NewReader(scenario)).
			WithValidator(func(f *DataFile) error {
				if f.NData() < 10 {
					return fmt.Errorf("need 10 rows, got %d", f.NData())
				}
				return nil
			}).
			WithValidator(func(*DataFile) error { called = true; return nil }).
			Build()
		assert.Nil(t, f)
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrCodeValidationFailed))
		assert.False(t, called)
	})

	t.Run("RequiredParameters", func(t *testing.T) {
		_, err := NewBuilder().
			WithReader(strings.NewReader("connection usb\n")).
			WithValidator(func(f *DataFile) error { return f.Validate(0, "samplehz") }).
			Build()
		assert.True(t, HasCode(err, ErrCodeValidationFailed))
	})
}

func TestBuildAndScan(t *testing.T) {
	var dev struct {
		SampleHz float64 `lconfig:"samplehz"`
		Conn     string  `lconfig:"connection"`
	}
	f, err := NewBuilder().
		WithReader(strings.NewReader(scenario)).
		BuildAndScan(0, &dev)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 1000.0, dev.SampleHz)
	assert.Equal(t, "usb", dev.Conn)

	_, err = NewBuilder().
		WithReader(strings.NewReader(scenario)).
		BuildAndScan(1, &dev)
	assert.True(t, HasCode(err, ErrCodeInvalidArgument))
}

func TestMustBuild(t *testing.T) {
	assert.NotPanics(t, func() {
		NewBuilder().WithReader(strings.NewReader(scenario)).MustBuild()
	})
	assert.Panics(t, func() {
		NewBuilder().MustBuild()
	})
}
