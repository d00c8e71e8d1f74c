// FILE: lixenwraith/lconfig/events.go
package lconfig

import (
	"fmt"
	"math"

	"github.com/agilira/go-errors"
)

// EventOptions bounds and shapes an edge scan.
type EventOptions struct {
	Start     Optional[float64] // Scan start time in seconds
	Stop      Optional[float64] // Scan stop time in seconds, exclusive
	MaxCount  int               // Stop after this many events; 0 for no limit
	Debounce  int               // Consecutive samples needed to commit a crossing, at least 1
	DiffOrder int               // Finite difference order applied before scanning
}

// DefaultEventOptions scans the whole channel with no debounce.
func DefaultEventOptions() EventOptions {
	return EventOptions{Debounce: 1}
}

// DetectEvents returns the sample indices at which the calibrated channel
// crosses level in the direction edge selects (an EdgeDomain value).
//
// A sample is above when it is greater than level. The first scanned sample
// fixes the starting side. The first sample landing on the other side is
// held as a pending edge; it is reported once Debounce consecutive samples
// sit on that side and dropped if the run breaks sooner.
//
// With DiffOrder n the scan runs over the n-th finite difference scaled by
// samplehz^n, and indices are shifted by n so they refer to the original samples.
func (f *DataFile) DetectEvents(sel ChannelSelector, level float64, edge Enum, opts EventOptions) ([]int, error) {
	if edge.Domain() != EdgeDomain {
		return nil, errors.New(ErrCodeInvalidArgument, "edge must be rising, falling or any")
	}
	if opts.Debounce < 1 {
		return nil, errors.New(ErrCodeInvalidArgument, fmt.Sprintf("debounce must be at least 1, got %d", opts.Debounce))
	}
	if opts.DiffOrder < 0 {
		return nil, errors.New(ErrCodeInvalidArgument, fmt.Sprintf("diff order must not be negative, got %d", opts.DiffOrder))
	}
	if opts.MaxCount < 0 {
		return nil, errors.New(ErrCodeInvalidArgument, fmt.Sprintf("max count must not be negative, got %d", opts.MaxCount))
	}

	x, err := f.Channel(sel)
	if err != nil {
		return nil, err
	}

	var hz float64
	if opts.DiffOrder > 0 || opts.Start.Set || opts.Stop.Set {
		if hz, err = f.SampleRate(0); err != nil {
			return nil, err
		}
	}

	offset := opts.DiffOrder
	for n := 0; n < opts.DiffOrder && len(x) > 0; n++ {
		for k := 0; k < len(x)-1; k++ {
			x[k] = (x[k+1] - x[k]) * hz
		}
		x = x[:len(x)-1]
	}

	start, stop := 0, len(x)
	if t, ok := opts.Start.Get(); ok {
		start = clampIndex(int(math.Round(t*hz))-offset, len(x))
	}
	if t, ok := opts.Stop.Get(); ok {
		stop = clampIndex(int(math.Round(t*hz))-offset, len(x))
	}

	rising := edge.Is("rising") || edge.Is("any")
	falling := edge.Is("falling") || edge.Is("any")

	events := make([]int, 0)
	if start >= stop {
		return events, nil
	}

	above := x[start] > level
	run, pending := 0, -1
	for k := start + 1; k < stop; k++ {
		if (x[k] > level) == above {
			run, pending = 0, -1
			continue
		}
		if run == 0 {
			pending = k
		}
		run++
		if run < opts.Debounce {
			continue
		}

		edgeAt := pending
		above = !above
		run, pending = 0, -1
		if (above && rising) || (!above && falling) {
			events = append(events, edgeAt+offset)
			if opts.MaxCount > 0 && len(events) >= opts.MaxCount {
				break
			}
		}
	}
	return events, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
