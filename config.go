// FILE: lixenwraith/lconfig/config.go
package lconfig

import (
	"fmt"
	"strings"
	"sync"

	"github.com/agilira/go-errors"
	"gonum.org/v1/gonum/mat"
)

// Config is a parsed LCONFIG header: the device stanzas in file order.
// A Config is never modified after load and may be read concurrently.
type Config struct {
	Devices []*Device

	schema *Schema // resolves defaults for parameters not set in the file
}

// DataFile is a loaded LCONFIG file: its header plus the sample block.
// Columns of the sample matrix are the analog inputs of the first device.
type DataFile struct {
	*Config

	Path  string    // Source file, empty when loaded from a reader
	Start Timestamp // Acquisition start from the "#:" line

	mutex   sync.RWMutex // Guards calibration against concurrent reads
	hasData bool         // A data block followed the header
	rows    int
	raw     *mat.Dense // nil when the block has no rows
	cal     *mat.Dense // Calibrated samples; aliases raw after in-place calibration
	calMode CalibrationMode
	time    []float64 // Cached time vector
}

// ChannelSelector picks a channel record by list position or by label.
type ChannelSelector struct {
	index   int
	label   string
	byLabel bool
}

// ChannelIndex selects the i-th channel of a scope, in file order.
func ChannelIndex(i int) ChannelSelector {
	return ChannelSelector{index: i}
}

// ChannelLabel selects the first channel whose label equals s, falling back
// to the first case-insensitive match.
func ChannelLabel(s string) ChannelSelector {
	return ChannelSelector{label: s, byLabel: true}
}

// String implements fmt.Stringer.
func (s ChannelSelector) String() string {
	if s.byLabel {
		return fmt.Sprintf("%q", s.label)
	}
	return fmt.Sprintf("#%d", s.index)
}

// Schema returns the schema the file was parsed with.
func (c *Config) Schema() *Schema {
	return c.schema
}

// device returns device i or an error naming the valid range.
func (c *Config) device(i int) (*Device, error) {
	if i < 0 || i >= len(c.Devices) {
		return nil, errors.New(ErrCodeInvalidArgument,
			fmt.Sprintf("device index %d out of range, %d devices loaded", i, len(c.Devices))).
			WithContext("device", i)
	}
	return c.Devices[i], nil
}

// resolveChannel maps a selector to a position in the scope's channel list.
func resolveChannel(d *Device, scope Scope, sel ChannelSelector) (int, error) {
	n := d.count(scope)
	if !sel.byLabel {
		if sel.index < 0 || sel.index >= n {
			return 0, errors.New(ErrCodeMissingChannel,
				fmt.Sprintf("%s channel %d does not exist, %d configured", scope, sel.index, n)).
				WithContext("channel", sel.index)
		}
		return sel.index, nil
	}
	// Unquoted labels are folded to lower case, so an exact match is
	// preferred and a case-insensitive one accepted.
	folded := -1
	for i := 0; i < n; i++ {
		l, ok := label(d.record(scope, i)).Get()
		if !ok {
			continue
		}
		if l == sel.label {
			return i, nil
		}
		if folded < 0 && strings.EqualFold(l, sel.label) {
			folded = i
		}
	}
	if folded >= 0 {
		return folded, nil
	}
	return 0, errors.New(ErrCodeLabelNotFound, fmt.Sprintf("no %s channel labeled %q", scope, sel.label)).
		WithContext("label", sel.label)
}

// Get resolves a parameter for device dev.
// Channel-scoped parameters need a selector. The value set in the file wins,
// then the schema default; device-scope names unknown to the schema are
// looked up in the metadata map.
func (c *Config) Get(dev int, param string, sel ...ChannelSelector) (any, error) {
	d, err := c.device(dev)
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(param)

	p, known := c.schema.Lookup(name)
	if !known {
		if v, ok := d.Meta[name]; ok {
			return v, nil
		}
		return nil, errors.New(ErrCodeUnrecognizedParam, fmt.Sprintf("unrecognized parameter: %s", name)).
			WithContext("param", name).
			WithContext("device", dev)
	}

	rec := any(d)
	if p.Scope != ScopeDevice {
		if len(sel) == 0 {
			return nil, errors.New(ErrCodeMissingChannel,
				fmt.Sprintf("parameter %s needs a %s channel selector", name, p.Scope)).
				WithContext("param", name).
				WithContext("device", dev)
		}
		i, err := resolveChannel(d, p.Scope, sel[0])
		if err != nil {
			return nil, err
		}
		rec = d.record(p.Scope, i)
	}

	if v, ok := p.fieldOf(rec).lookup(); ok {
		return v, nil
	}
	if v, ok := c.schema.Default(name); ok {
		return v, nil
	}
	return nil, errors.New(ErrCodeParameterNotFound, fmt.Sprintf("parameter %s is not set and has no default", name)).
		WithContext("param", name).
		WithContext("device", dev)
}

// GetMany resolves several parameters against the same device and channel.
// The result is in request order; the first failure aborts the call.
func (c *Config) GetMany(dev int, params []string, sel ...ChannelSelector) ([]any, error) {
	values := make([]any, len(params))
	for i, param := range params {
		v, err := c.Get(dev, param, sel...)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Labels returns the label of every channel of a scope, empty for unlabeled channels.
func (c *Config) Labels(dev int, scope Scope) ([]string, error) {
	d, err := c.device(dev)
	if err != nil {
		return nil, err
	}
	if scope == ScopeDevice {
		return nil, errors.New(ErrCodeInvalidArgument, "labels are only defined for channel scopes")
	}
	n := d.count(scope)
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = label(d.record(scope, i)).Or("")
	}
	return labels, nil
}

// NDev returns the number of device stanzas.
func (c *Config) NDev() int {
	return len(c.Devices)
}

func (c *Config) countOf(dev int, scope Scope) int {
	if dev < 0 || dev >= len(c.Devices) {
		return 0
	}
	return c.Devices[dev].count(scope)
}

// NAI returns the number of analog input channels of device dev.
func (c *Config) NAI(dev int) int { return c.countOf(dev, ScopeAI) }

// NAO returns the number of analog output channels of device dev.
func (c *Config) NAO(dev int) int { return c.countOf(dev, ScopeAO) }

// NEF returns the number of flexible IO channels of device dev.
func (c *Config) NEF(dev int) int { return c.countOf(dev, ScopeEF) }

// NCOM returns the number of communication channels of device dev.
func (c *Config) NCOM(dev int) int { return c.countOf(dev, ScopeCOM) }

// ChannelOption adjusts what Channel and Time return.
type ChannelOption func(*channelOptions)

type channelOptions struct {
	start, stop int
	downsample  int
	raw         bool
}

// WithRange limits the result to samples [start, stop).
// A negative stop means the end of the data; both bounds are clamped.
func WithRange(start, stop int) ChannelOption {
	return func(o *channelOptions) {
		o.start = start
		o.stop = stop
	}
}

// WithDownsample keeps every n-th sample.
func WithDownsample(n int) ChannelOption {
	return func(o *channelOptions) {
		o.downsample = n
	}
}

// Raw bypasses calibration.
func Raw() ChannelOption {
	return func(o *channelOptions) {
		o.raw = true
	}
}

func buildChannelOptions(opts []ChannelOption) channelOptions {
	o := channelOptions{stop: -1, downsample: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.downsample < 1 {
		o.downsample = 1
	}
	return o
}

// window copies the selected part of v.
func (o channelOptions) window(v []float64) []float64 {
	start, stop := o.start, o.stop
	if stop < 0 || stop > len(v) {
		stop = len(v)
	}
	if start < 0 {
		start = 0
	}
	if start >= stop {
		return []float64{}
	}
	out := make([]float64, 0, (stop-start+o.downsample-1)/o.downsample)
	for k := start; k < stop; k += o.downsample {
		out = append(out, v[k])
	}
	return out
}

// NData returns the number of sample rows.
func (f *DataFile) NData() int {
	return f.rows
}

// HasData reports whether a data block followed the header.
func (f *DataFile) HasData() bool {
	return f.hasData
}

// Channel returns the samples of an analog input of the first device,
// calibrated unless Raw is given.
func (f *DataFile) Channel(sel ChannelSelector, opts ...ChannelOption) ([]float64, error) {
	o := buildChannelOptions(opts)
	col, err := f.column(sel, o.raw)
	if err != nil {
		return nil, err
	}
	return o.window(col), nil
}

// column copies one matrix column.
func (f *DataFile) column(sel ChannelSelector, raw bool) ([]float64, error) {
	if !f.hasData {
		return nil, errors.New(ErrCodeNoData, "no data block was loaded")
	}
	if len(f.Devices) == 0 {
		return nil, errors.New(ErrCodeMissingDevice, "file has no device stanza")
	}
	j, err := resolveChannel(f.Devices[0], ScopeAI, sel)
	if err != nil {
		return nil, err
	}

	f.mutex.RLock()
	defer f.mutex.RUnlock()

	if raw && f.calMode == CalibrateInPlace {
		return nil, errors.New(ErrCodeInvalidArgument, "raw samples were overwritten by in-place calibration")
	}
	if f.rows == 0 {
		return []float64{}, nil
	}
	m := f.raw
	if !raw && f.cal != nil {
		m = f.cal
	}
	return mat.Col(nil, j, m), nil
}

// Samples returns a copy of the sample matrix, calibrated unless raw is set.
// The result is nil when the data block has no rows.
func (f *DataFile) Samples(raw bool) (*mat.Dense, error) {
	if !f.hasData {
		return nil, errors.New(ErrCodeNoData, "no data block was loaded")
	}

	f.mutex.RLock()
	defer f.mutex.RUnlock()

	if raw && f.calMode == CalibrateInPlace {
		return nil, errors.New(ErrCodeInvalidArgument, "raw samples were overwritten by in-place calibration")
	}
	if f.rows == 0 {
		return nil, nil
	}
	m := f.raw
	if !raw && f.cal != nil {
		m = f.cal
	}
	return mat.DenseCopyOf(m), nil
}
