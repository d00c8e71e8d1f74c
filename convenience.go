// File: lixenwraith/lconfig/convenience.go
package lconfig

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agilira/go-errors"
)

// Load reads an LCONFIG file with its data block, calibrated by copy.
func Load(path string) (*DataFile, error) {
	return LoadFile(path, DefaultLoadOptions())
}

// LoadConfig reads only the header of an LCONFIG file.
func LoadConfig(path string) (*Config, error) {
	opts := DefaultLoadOptions()
	opts.ReadData = false
	f, err := LoadFile(path, opts)
	if err != nil {
		return nil, err
	}
	return f.Config, nil
}

// MustLoad is like Load but panics on error
func MustLoad(path string) *DataFile {
	f, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("lconfig load failed: %v", err))
	}
	return f
}

// Quick loads path with schema defaults taken from defaultsFile, if not empty.
func Quick(path, defaultsFile string) (*DataFile, error) {
	return NewBuilder().
		WithFile(path).
		WithDefaultsFile(defaultsFile).
		Build()
}

// Validate checks that every named parameter resolves for device dev,
// either from the file or from a default.
func (c *Config) Validate(dev int, required ...string) error {
	var missing []string
	for _, param := range required {
		if _, err := c.Get(dev, param); err != nil {
			missing = append(missing, param)
		}
	}
	if len(missing) > 0 {
		return errors.New(ErrCodeValidationFailed, fmt.Sprintf("missing required parameters: %s", strings.Join(missing, ", "))).
			WithContext("device", dev)
	}
	return nil
}

// Debug returns a formatted listing of every device with its explicit
// parameters, channels and metadata.
func (c *Config) Debug() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("LCONFIG: %d device(s)\n", len(c.Devices)))

	for i, d := range c.Devices {
		b.WriteString(fmt.Sprintf("device %d:\n", i))
		writeRecord(&b, c.schema, d, ScopeDevice, "  ")

		for _, scope := range allScopes[1:] {
			for j := 0; j < d.count(scope); j++ {
				b.WriteString(fmt.Sprintf("  %s[%d]:\n", scope, j))
				writeRecord(&b, c.schema, d.record(scope, j), scope, "    ")
			}
		}

		if len(d.Meta) > 0 {
			b.WriteString("  meta:\n")
			keys := make([]string, 0, len(d.Meta))
			for k := range d.Meta {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				b.WriteString(fmt.Sprintf("    %s: %v (%T)\n", k, d.Meta[k], d.Meta[k]))
			}
		}
	}
	return b.String()
}

func writeRecord(b *strings.Builder, s *Schema, rec any, scope Scope, indent string) {
	for _, p := range s.Params(scope) {
		if v, ok := p.fieldOf(rec).lookup(); ok {
			b.WriteString(fmt.Sprintf("%s%s: %v\n", indent, p.Name, v))
		}
	}
}

// Dump writes device dev, resolved with defaults, to w in TOML format.
func (c *Config) Dump(dev int, w io.Writer) error {
	d, err := c.device(dev)
	if err != nil {
		return err
	}

	nested := make(map[string]any)
	for name, v := range c.resolved(d, ScopeDevice) {
		setNestedValue(nested, "device."+name, plain(v))
	}
	for _, scope := range allScopes[1:] {
		n := d.count(scope)
		if n == 0 {
			continue
		}
		records := make([]map[string]any, n)
		for j := 0; j < n; j++ {
			records[j] = make(map[string]any)
			for name, v := range c.resolved(d.record(scope, j), scope) {
				records[j][name] = plain(v)
			}
		}
		nested[scope.String()] = records
	}
	if len(d.Meta) > 0 {
		nested["meta"] = d.Meta
	}

	encoder := toml.NewEncoder(w)
	if err := encoder.Encode(nested); err != nil {
		return errors.Wrap(err, ErrCodeIO, "failed to encode device as TOML")
	}
	return nil
}

// plain replaces enumerated values by their state name.
func plain(v any) any {
	if e, ok := v.(Enum); ok {
		return e.Get()
	}
	return v
}
