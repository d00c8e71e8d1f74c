// FILE: lixenwraith/lconfig/example/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lixenwraith/lconfig"
	"github.com/rs/zerolog"
)

// A two-channel thermocouple run with metadata and a calibrated channel.
const sample = `# Burner test
connection eth
ip "192.168.1.10"
samplehz 100
nsample 8

aichannel 0
ainegative differential
ailabel TC1
airange 0.1

aichannel 2
ailabel Flow
aicalslope 20
aicalzero 0.5
aicalunits "L/min"

meta flt
fuel_ratio 0.62
meta end
str:operator "J. Doe"

##
#:Mon Jan 1 00:00:00 2024
0.001 0.5
0.002 0.6
0.004 0.9
0.004 1.0
0.003 1.0
0.002 0.5
`

// RunInfo is filled from the device stanza.
type RunInfo struct {
	IP       string  `lconfig:"ip"`
	SampleHz float64 `lconfig:"samplehz"`
	NSample  int     `lconfig:"nsample"`
	Device   string  `lconfig:"device"`
}

func main() {
	dir, err := os.MkdirTemp("", "lconfig-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "burner.dat")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		log.Fatal(err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)

	var info RunInfo
	f, err := lconfig.NewBuilder().
		WithFile(path).
		WithLogger(logger).
		WithValidator(func(f *lconfig.DataFile) error {
			return f.Validate(0, "samplehz")
		}).
		BuildAndScan(0, &info)
	if err != nil {
		log.Fatalf("load failed: %v", err)
	}
	fmt.Printf("device: %+v\n", info)

	neg, _ := f.Enum(0, "ainegative", lconfig.ChannelLabel("TC1"))
	fmt.Printf("TC1 negative input: %s (code %d)\n", neg, neg.Code())

	units, _ := f.String(0, "aicalunits", lconfig.ChannelLabel("Flow"))
	flow, err := f.Channel(lconfig.ChannelLabel("Flow"))
	if err != nil {
		log.Fatal(err)
	}
	t, err := f.Time()
	if err != nil {
		log.Fatal(err)
	}
	for k := range flow {
		fmt.Printf("t=%.2fs flow=%.1f %s\n", t[k], flow[k], units)
	}

	ratio, _ := f.Get(0, "fuel_ratio")
	operator, _ := f.Get(0, "operator")
	fmt.Printf("fuel ratio %v, operator %v, started %s\n", ratio, operator, f.Start)

	opts := lconfig.DefaultEventOptions()
	opts.Debounce = 2
	events, err := f.DetectEvents(lconfig.ChannelLabel("Flow"), 5, lconfig.EdgeDomain.MustParse("any"), opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("flow crossed 5 L/min at samples %v\n", events)
}
