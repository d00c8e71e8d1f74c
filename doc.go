// File: lixenwraith/lconfig/doc.go

// Package lconfig reads LCONFIG files: the whitespace-delimited configuration
// and data files written by the LabJack acquisition driver.
//
// A file is a header of parameter/value word pairs, grouped into device
// stanzas that each begin with a "connection" directive, optionally followed
// by "##", a "#:" start timestamp and rows of samples, one column per analog
// input of the first device.
//
// Features:
//   - Tokenizer with quoting, "#" comments and the "##" header terminator
//   - Typed device and channel records with explicit presence flags
//   - Enumerated values over shared, immutable domains
//   - Free-form metadata through "meta" and "int:"/"flt:"/"str:" keywords
//   - Schema defaults that can be overridden from TOML, YAML or JSON
//   - Sample matrix with copy or in-place calibration and a cached time vector
//   - Channel lookup by index or label, debounced edge detection
//   - Coded errors (github.com/agilira/go-errors) and zerolog logging
//
// Quick Start:
//
//	f, err := lconfig.Load("run.dat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hz, _ := f.Float64(0, "samplehz")
//	t, _ := f.Time()
//	v, _ := f.Channel(lconfig.ChannelLabel("T1"))
//	rising, _ := f.DetectEvents(lconfig.ChannelLabel("T1"), 2.5,
//	    lconfig.EdgeDomain.MustParse("rising"), lconfig.DefaultEventOptions())
//
// Parameter resolution:
//  1. The value written in the file
//  2. The schema default (builtin, or overridden by a defaults file)
//  3. Names unknown to the schema are looked up in the device metadata
//
// Custom loading:
//
//	f, err := lconfig.NewBuilder().
//	    WithFile("run.dat").
//	    WithDefaultsDiscovery(lconfig.DefaultDiscoveryOptions()).
//	    WithCalibration(lconfig.CalibrateInPlace).
//	    WithLogger(logger).
//	    Build()
//
// Thread Safety:
// A loaded Config is read-only and may be shared. DataFile guards its sample
// matrices with a read-write mutex so calibration can run beside readers.
package lconfig
