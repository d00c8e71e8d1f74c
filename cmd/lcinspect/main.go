// FILE: lixenwraith/lconfig/cmd/lcinspect/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/lconfig"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"
)

func main() {
	app := &cli.App{
		Name:    "lcinspect",
		Usage:   "inspect LCONFIG configuration and data files",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log load events at debug level",
			},
			&cli.StringFlag{
				Name:  "defaults",
				Usage: "schema defaults file (TOML, YAML or JSON)",
			},
			&cli.BoolFlag{
				Name:  "discover",
				Usage: "search for a defaults file ($LCONFIG_DEFAULTS, ./lconfig-defaults.*, XDG dirs)",
			},
			&cli.StringFlag{
				Name:  "calibration",
				Usage: "calibration applied after loading: none, copy or in-place",
				Value: "copy",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "list devices, channels and metadata",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "device", Aliases: []string{"d"}, Value: -1, Usage: "dump one device as TOML, defaults resolved"},
				},
				Action: showAction,
			},
			{
				Name:      "get",
				Usage:     "resolve parameters",
				ArgsUsage: "FILE PARAM...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "device", Aliases: []string{"d"}},
					&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Usage: "channel index or label for channel parameters"},
				},
				Action: getAction,
			},
			{
				Name:      "channel",
				Usage:     "print time and samples of an analog input",
				ArgsUsage: "FILE CHANNEL",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "raw", Usage: "skip calibration"},
					&cli.IntFlag{Name: "start", Usage: "first sample"},
					&cli.IntFlag{Name: "stop", Value: -1, Usage: "sample after the last one, -1 for the end"},
					&cli.IntFlag{Name: "downsample", Value: 1, Usage: "keep every n-th sample"},
				},
				Action: channelAction,
			},
			{
				Name:      "matrix",
				Usage:     "print the sample matrix",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "raw", Usage: "skip calibration"},
					&cli.IntFlag{Name: "excerpt", Value: 5, Usage: "rows shown at each end, 0 for all"},
				},
				Action: matrixAction,
			},
			{
				Name:      "events",
				Usage:     "detect level crossings on an analog input",
				ArgsUsage: "FILE CHANNEL",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "level", Required: true},
					&cli.StringFlag{Name: "edge", Value: "rising", Usage: "rising, falling or any"},
					&cli.IntFlag{Name: "debounce", Value: 1},
					&cli.IntFlag{Name: "diff", Usage: "finite difference order"},
					&cli.IntFlag{Name: "max", Usage: "stop after this many events, 0 for all"},
					&cli.Float64Flag{Name: "start", Usage: "scan start in seconds"},
					&cli.Float64Flag{Name: "stop", Usage: "scan stop in seconds"},
				},
				Action: eventsAction,
			},
			{
				Name:  "defaults",
				Usage: "print the schema defaults, or write them with --out",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "TOML file to write"},
				},
				Action: defaultsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lcinspect: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) zerolog.Logger {
	level := zerolog.WarnLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

// newBuilder applies the global flags.
func newBuilder(c *cli.Context) (*lconfig.Builder, error) {
	mode, err := lconfig.ParseCalibrationMode(c.String("calibration"))
	if err != nil {
		return nil, err
	}
	b := lconfig.NewBuilder().
		WithLogger(newLogger(c)).
		WithCalibration(mode).
		WithDefaultsFile(c.String("defaults"))
	if c.Bool("discover") {
		b = b.WithDefaultsDiscovery(lconfig.DefaultDiscoveryOptions())
	}
	return b, nil
}

func load(c *cli.Context, readData bool) (*lconfig.DataFile, error) {
	path := c.Args().First()
	if path == "" {
		return nil, cli.Exit("no file given", 2)
	}
	b, err := newBuilder(c)
	if err != nil {
		return nil, err
	}
	return b.WithFile(path).WithData(readData).Build()
}

// selector reads "3" as an index and anything else as a label.
func selector(s string) lconfig.ChannelSelector {
	if i, err := strconv.Atoi(s); err == nil {
		return lconfig.ChannelIndex(i)
	}
	return lconfig.ChannelLabel(s)
}

func showAction(c *cli.Context) error {
	f, err := load(c, true)
	if err != nil {
		return err
	}
	if dev := c.Int("device"); dev >= 0 {
		return f.Dump(dev, os.Stdout)
	}

	fmt.Print(f.Debug())
	if f.HasData() {
		fmt.Printf("data: %d rows, start %q", f.NData(), f.Start.Raw)
		if t, ok := f.Start.Time(); ok {
			fmt.Printf(" (%s)", t.Format(time.DateTime))
		}
		fmt.Println()
	}
	return nil
}

func getAction(c *cli.Context) error {
	f, err := load(c, false)
	if err != nil {
		return err
	}
	params := c.Args().Tail()
	if len(params) == 0 {
		return cli.Exit("no parameter given", 2)
	}

	var sel []lconfig.ChannelSelector
	if s := c.String("channel"); s != "" {
		sel = append(sel, selector(s))
	}
	values, err := f.GetMany(c.Int("device"), params, sel...)
	if err != nil {
		return err
	}
	for i, v := range values {
		fmt.Printf("%s = %v\n", params[i], v)
	}
	return nil
}

func channelAction(c *cli.Context) error {
	f, err := load(c, true)
	if err != nil {
		return err
	}
	if c.Args().Len() < 2 {
		return cli.Exit("no channel given", 2)
	}

	opts := []lconfig.ChannelOption{
		lconfig.WithRange(c.Int("start"), c.Int("stop")),
		lconfig.WithDownsample(c.Int("downsample")),
	}
	t, terr := f.Time(opts...)
	if c.Bool("raw") {
		opts = append(opts, lconfig.Raw())
	}
	v, err := f.Channel(selector(c.Args().Get(1)), opts...)
	if err != nil {
		return err
	}
	for k := range v {
		if terr == nil {
			fmt.Printf("%g\t%g\n", t[k], v[k])
		} else {
			fmt.Printf("%d\t%g\n", k, v[k])
		}
	}
	return nil
}

func matrixAction(c *cli.Context) error {
	f, err := load(c, true)
	if err != nil {
		return err
	}
	m, err := f.Samples(c.Bool("raw"))
	if err != nil {
		return err
	}
	if m == nil {
		fmt.Println("no samples")
		return nil
	}

	labels, err := f.Labels(0, lconfig.ScopeAI)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(labels, "\t"))
	fmt.Printf("%v\n", mat.Formatted(m, mat.Prefix(""), mat.Excerpt(c.Int("excerpt"))))
	return nil
}

func eventsAction(c *cli.Context) error {
	f, err := load(c, true)
	if err != nil {
		return err
	}
	if c.Args().Len() < 2 {
		return cli.Exit("no channel given", 2)
	}
	edge, err := lconfig.EdgeDomain.Parse(strings.ToLower(c.String("edge")))
	if err != nil {
		return err
	}

	opts := lconfig.EventOptions{
		MaxCount:  c.Int("max"),
		Debounce:  c.Int("debounce"),
		DiffOrder: c.Int("diff"),
	}
	if c.IsSet("start") {
		opts.Start = lconfig.Some(c.Float64("start"))
	}
	if c.IsSet("stop") {
		opts.Stop = lconfig.Some(c.Float64("stop"))
	}

	events, err := f.DetectEvents(selector(c.Args().Get(1)), c.Float64("level"), edge, opts)
	if err != nil {
		return err
	}
	t, err := f.Time()
	for _, k := range events {
		if err == nil {
			fmt.Printf("%d\t%g\n", k, t[k])
		} else {
			fmt.Println(k)
		}
	}
	return nil
}

func defaultsAction(c *cli.Context) error {
	schema := lconfig.DefaultSchema()
	path := c.String("defaults")
	if path == "" && c.Bool("discover") {
		path = lconfig.DiscoverDefaultsFile(lconfig.DefaultDiscoveryOptions())
	}
	if path != "" {
		if err := schema.LoadDefaultsFile(path); err != nil {
			return err
		}
	}

	if out := c.String("out"); out != "" {
		return schema.SaveDefaults(out)
	}
	for _, scope := range []lconfig.Scope{lconfig.ScopeDevice, lconfig.ScopeAI, lconfig.ScopeAO, lconfig.ScopeEF, lconfig.ScopeCOM} {
		fmt.Printf("[%s]\n", scope)
		for _, p := range schema.Params(scope) {
			v, ok := schema.Default(p.Name)
			if !ok {
				fmt.Printf("  %-12s %-6s (no default)\n", p.Name, p.Kind)
				continue
			}
			fmt.Printf("  %-12s %-6s %v\n", p.Name, p.Kind, v)
		}
	}
	return nil
}
