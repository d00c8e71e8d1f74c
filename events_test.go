// FILE: lixenwraith/lconfig/events_test.go
package lconfig

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signalFile builds a one-channel file sampled at hz
func signalFile(t *testing.T, hz float64, values ...float64) *DataFile {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "connection usb\nsamplehz %g\naichannel 0\nailabel sig\n##\n#:Mon Jan 1 00:00:00 2024\n", hz)
	for _, v := range values {
		fmt.Fprintf(&b, "%g\n", v)
	}
	return mustLoadString(t, b.String())
}

func edgeOf(name string) Enum {
	return EdgeDomain.MustParse(name)
}

func eventOpts(fn func(o *EventOptions)) EventOptions {
	o := DefaultEventOptions()
	if fn != nil {
		fn(&o)
	}
	return o
}

// TestDetectEvents tests the debounced crossing scan
func TestDetectEvents(t *testing.T) {
	sig := ChannelLabel("sig")

	tests := []struct {
		name   string
		values []float64
		level  float64
		edge   string
		opts   EventOptions
		want   []int
	}{
		{"DebounceReportsFirstSampleOfRun", []float64{0, 0, 0, 1, 1, 1}, 0.5, "rising",
			eventOpts(func(o *EventOptions) { o.Debounce = 3 }), []int{3}},
		{"NoDebounce", []float64{0, 0, 0, 1, 1, 1}, 0.5, "rising",
			eventOpts(nil), []int{3}},
		{"ShortExcursionDropped", []float64{0, 0, 1, 0, 0, 1, 1, 1}, 0.5, "rising",
			eventOpts(func(o *EventOptions) { o.Debounce = 2 }), []int{5}},
		{"BrokenRunRestartsPendingEdge", []float64{0, 1, 1, 0, 1, 1, 1}, 0.5, "rising",
			eventOpts(func(o *EventOptions) { o.Debounce = 3 }), []int{4}},
		{"BrokenFallingRunDropped", []float64{1, 1, 0, 1, 0, 0}, 0.5, "falling",
			eventOpts(func(o *EventOptions) { o.Debounce = 2 }), []int{4}},
		{"DebouncedBothWays", []float64{0, 1, 1, 0, 1, 0, 0, 1}, 0.5, "any",
			eventOpts(func(o *EventOptions) { o.Debounce = 2 }), []int{1, 5}},
		{"RunTooShortAtEnd", []float64{0, 0, 1, 1}, 0.5, "rising",
			eventOpts(func(o *EventOptions) { o.Debounce = 3 }), []int{}},
		{"Falling", []float64{1, 1, 0, 0, 1, 0}, 0.5, "falling",
			eventOpts(nil), []int{2, 5}},
		{"Rising", []float64{1, 1, 0, 0, 1, 0}, 0.5, "rising",
			eventOpts(nil), []int{4}},
		{"Any", []float64{1, 1, 0, 0, 1, 0}, 0.5, "any",
			eventOpts(nil), []int{2, 4, 5}},
		{"StartingAboveIsNotAnEvent", []float64{2, 2, 2}, 1, "any",
			eventOpts(nil), []int{}},
		{"EqualToLevelIsBelow", []float64{0, 1, 1}, 1, "rising",
			eventOpts(nil), []int{}},
		{"MaxCount", []float64{1, 1, 0, 0, 1, 0}, 0.5, "any",
			eventOpts(func(o *EventOptions) { o.MaxCount = 2 }), []int{2, 4}},
		{"StartTime", []float64{0, 0, 1, 1, 0, 0, 1, 1}, 0.5, "any",
			eventOpts(func(o *EventOptions) { o.Start = Some(3.0) }), []int{4, 6}},
		{"StopTimeExclusive", []float64{0, 0, 1, 1, 0, 0, 1, 1}, 0.5, "any",
			eventOpts(func(o *EventOptions) { o.Stop = Some(6.0) }), []int{2, 4}},
		{"EmptyWindow", []float64{0, 1, 0, 1}, 0.5, "any",
			eventOpts(func(o *EventOptions) { o.Start = Some(3.0); o.Stop = Some(1.0) }), []int{}},
		{"WindowClamped", []float64{0, 1, 0, 1}, 0.5, "any",
			eventOpts(func(o *EventOptions) { o.Start = Some(-5.0); o.Stop = Some(100.0) }), []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := signalFile(t, 1, tt.values...)
			got, err := f.DetectEvents(sig, tt.level, edgeOf(tt.edge), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectEventsDifference(t *testing.T) {
	t.Run("FirstOrder", func(t *testing.T) {
		// Slope is 0, 0, 10, 10, 10 per second at 2 Hz
		f := signalFile(t, 2, 0, 0, 0, 5, 10, 15)
		got, err := f.DetectEvents(ChannelIndex(0), 5, edgeOf("rising"), eventOpts(func(o *EventOptions) { o.DiffOrder = 1 }))
		require.NoError(t, err)
		assert.Equal(t, []int{3}, got)
	})

	t.Run("SecondOrder", func(t *testing.T) {
		// Second difference is 0, 1, 1, 0, -1 at 1 Hz
		f := signalFile(t, 1, 0, 0, 0, 1, 3, 5, 6)
		got, err := f.DetectEvents(ChannelIndex(0), 0.5, edgeOf("any"), eventOpts(func(o *EventOptions) { o.DiffOrder = 2 }))
		require.NoError(t, err)
		assert.Equal(t, []int{3, 5}, got)
	})

	t.Run("DoesNotModifyChannel", func(t *testing.T) {
		f := signalFile(t, 1, 0, 1, 4, 9)
		_, err := f.DetectEvents(ChannelIndex(0), 0, edgeOf("any"), eventOpts(func(o *EventOptions) { o.DiffOrder = 1 }))
		require.NoError(t, err)
		v, err := f.Channel(ChannelIndex(0))
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 4, 9}, v)
	})

	t.Run("OrderLongerThanData", func(t *testing.T) {
		f := signalFile(t, 1, 0, 1)
		got, err := f.DetectEvents(ChannelIndex(0), 0, edgeOf("any"), eventOpts(func(o *EventOptions) { o.DiffOrder = 3 }))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("NeedsSampleRate", func(t *testing.T) {
		f := mustLoadString(t, "connection usb\naichannel 0\n##\n0\n1\n")
		_, err := f.DetectEvents(ChannelIndex(0), 0, edgeOf("any"), eventOpts(func(o *EventOptions) { o.DiffOrder = 1 }))
		assert.True(t, HasCode(err, ErrCodeSampleRateUnset))

		got, err := f.DetectEvents(ChannelIndex(0), 0.5, edgeOf("any"), eventOpts(nil))
		require.NoError(t, err)
		assert.Equal(t, []int{1}, got, "plain scans work without a rate")
	})
}

func TestDetectEventsCalibrated(t *testing.T) {
	f := mustLoadString(t, "connection usb\nsamplehz 1\naichannel 0\naicalslope 100\n##\n0.01\n0.02\n0.06\n")
	got, err := f.DetectEvents(ChannelIndex(0), 5, edgeOf("rising"), eventOpts(nil))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got)
}

func TestDetectEventsErrors(t *testing.T) {
	f := signalFile(t, 1, 0, 1, 0)

	tests := []struct {
		name    string
		sel     ChannelSelector
		edge    Enum
		opts    EventOptions
		errCode string
	}{
		{"ZeroDebounce", ChannelIndex(0), edgeOf("rising"), EventOptions{}, ErrCodeInvalidArgument},
		{"NegativeDiff", ChannelIndex(0), edgeOf("rising"), eventOpts(func(o *EventOptions) { o.DiffOrder = -1 }), ErrCodeInvalidArgument},
		{"NegativeMax", ChannelIndex(0), edgeOf("rising"), eventOpts(func(o *EventOptions) { o.MaxCount = -1 }), ErrCodeInvalidArgument},
		{"EdgeFromOtherDomain", ChannelIndex(0), ConnectionDomain.At(0), eventOpts(nil), ErrCodeInvalidArgument},
		{"UnboundEdge", ChannelIndex(0), Enum{}, eventOpts(nil), ErrCodeInvalidArgument},
		{"MissingLabel", ChannelLabel("nope"), edgeOf("rising"), eventOpts(nil), ErrCodeLabelNotFound},
		{"MissingChannel", ChannelIndex(1), edgeOf("rising"), eventOpts(nil), ErrCodeMissingChannel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.DetectEvents(tt.sel, 0.5, tt.edge, tt.opts)
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.errCode), "got %v", err)
		})
	}

	t.Run("NoData", func(t *testing.T) {
		h := mustLoadString(t, "connection usb\naichannel 0\n", headerOnly)
		_, err := h.DetectEvents(ChannelIndex(0), 0, edgeOf("any"), eventOpts(nil))
		assert.True(t, HasCode(err, ErrCodeNoData))
	})
}
