// FILE: lixenwraith/lconfig/calibrate.go
package lconfig

import (
	"fmt"

	"github.com/agilira/go-errors"
	"gonum.org/v1/gonum/mat"
)

// CalibrationMode chooses who owns the calibrated samples.
type CalibrationMode int

const (
	// CalibrateNone leaves the samples raw
	CalibrateNone CalibrationMode = iota
	// CalibrateCopy writes calibrated samples to a new matrix and keeps the raw one
	CalibrateCopy
	// CalibrateInPlace overwrites the raw samples
	CalibrateInPlace
)

// String implements fmt.Stringer.
func (m CalibrationMode) String() string {
	switch m {
	case CalibrateNone:
		return "none"
	case CalibrateCopy:
		return "copy"
	case CalibrateInPlace:
		return "in-place"
	}
	return fmt.Sprintf("calibration(%d)", int(m))
}

// ParseCalibrationMode resolves "none", "copy" or "in-place".
func ParseCalibrationMode(s string) (CalibrationMode, error) {
	switch s {
	case "none", "":
		return CalibrateNone, nil
	case "copy":
		return CalibrateCopy, nil
	case "in-place", "inplace":
		return CalibrateInPlace, nil
	}
	return CalibrateNone, errors.New(ErrCodeInvalidArgument, fmt.Sprintf("unknown calibration mode %q", s))
}

// ApplyCalibration computes (raw - zero) * slope for every analog input.
// Channels at slope 1 and zero 0 are copied untouched.
// CalibrateCopy may be repeated and always starts from the raw samples.
// CalibrateInPlace consumes the raw samples: repeating it is a no-op and a
// later CalibrateCopy fails.
func (f *DataFile) ApplyCalibration(mode CalibrationMode) error {
	if mode != CalibrateCopy && mode != CalibrateInPlace {
		return errors.New(ErrCodeInvalidArgument, fmt.Sprintf("cannot apply calibration mode %s", mode))
	}
	if !f.hasData {
		return errors.New(ErrCodeNoData, "no data block was loaded")
	}

	slopes, zeros, err := f.coefficients()
	if err != nil {
		return err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.calMode == CalibrateInPlace {
		if mode == CalibrateInPlace {
			return nil
		}
		return errors.New(ErrCodeInvalidArgument, "raw samples were overwritten by in-place calibration")
	}

	if f.rows == 0 {
		f.calMode = mode
		return nil
	}

	target := f.raw
	if mode == CalibrateCopy {
		target = mat.DenseCopyOf(f.raw)
	}
	for j := range slopes {
		s, z := slopes[j], zeros[j]
		if s == 1.0 && z == 0.0 {
			continue
		}
		for i := 0; i < f.rows; i++ {
			target.Set(i, j, (target.At(i, j)-z)*s)
		}
	}

	f.cal = target
	f.calMode = mode
	return nil
}

// Calibration reports the calibration currently in effect.
func (f *DataFile) Calibration() CalibrationMode {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.calMode
}

// coefficients resolves slope and zero of every analog input of device 0.
func (f *DataFile) coefficients() (slopes, zeros []float64, err error) {
	if len(f.Devices) == 0 {
		return nil, nil, nil
	}
	n := f.NAI(0)
	slopes = make([]float64, n)
	zeros = make([]float64, n)
	for i := 0; i < n; i++ {
		if slopes[i], err = f.Float64(0, "aicalslope", ChannelIndex(i)); err != nil {
			return nil, nil, err
		}
		if zeros[i], err = f.Float64(0, "aicalzero", ChannelIndex(i)); err != nil {
			return nil, nil, err
		}
	}
	return slopes, zeros, nil
}

// SampleRate returns the sample rate of device dev in Hz.
func (c *Config) SampleRate(dev int) (float64, error) {
	hz, err := c.Float64(dev, "samplehz")
	if err != nil {
		if HasCode(err, ErrCodeParameterNotFound) {
			return 0, errors.New(ErrCodeSampleRateUnset, "samplehz is not set").
				WithContext("device", dev)
		}
		return 0, err
	}
	if hz <= 0 {
		return 0, errors.New(ErrCodeSampleRateUnset, fmt.Sprintf("samplehz must be positive, got %g", hz)).
			WithContext("device", dev)
	}
	return hz, nil
}

// Time returns the sample times t[k] = k / samplehz of the first device.
// The full vector is built once and cached.
func (f *DataFile) Time(opts ...ChannelOption) ([]float64, error) {
	if !f.hasData {
		return nil, errors.New(ErrCodeNoData, "no data block was loaded")
	}
	if len(f.Devices) == 0 {
		return nil, errors.New(ErrCodeMissingDevice, "file has no device stanza")
	}

	f.mutex.RLock()
	t := f.time
	f.mutex.RUnlock()

	if t == nil {
		hz, err := f.SampleRate(0)
		if err != nil {
			return nil, err
		}

		f.mutex.Lock()
		if f.time == nil {
			f.time = make([]float64, f.rows)
			for k := range f.time {
				f.time[k] = float64(k) / hz
			}
		}
		t = f.time
		f.mutex.Unlock()
	}

	return buildChannelOptions(opts).window(t), nil
}
