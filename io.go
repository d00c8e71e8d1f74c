// File: lixenwraith/lconfig/io.go
package lconfig

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agilira/go-errors"
	"gopkg.in/yaml.v3"
)

var allScopes = []Scope{ScopeDevice, ScopeAI, ScopeAO, ScopeEF, ScopeCOM}

// LoadDefaultsFile overrides schema defaults from a TOML, YAML or JSON file.
// Keys are "<scope>.<param>", for example:
//
//	[ai]
//	airange = 1.0
//	aicalunits = "mV"
//
// The format comes from the extension, else from the content.
func (s *Schema) LoadDefaultsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return errors.New(ErrCodeDefaultsNotFound, fmt.Sprintf("defaults file not found: %s", path)).
				WithContext("path", path)
		}
		return errors.Wrap(err, ErrCodeIO, fmt.Sprintf("failed to read defaults file '%s'", path)).
			WithContext("path", path)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}
	if err := s.LoadDefaults(data, format); err != nil {
		return annotate(err, "path", path)
	}
	return nil
}

// LoadDefaults overrides schema defaults from encoded data.
// format is "toml", "yaml" or "json".
func (s *Schema) LoadDefaults(data []byte, format string) error {
	values := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &values); err != nil {
			return errors.Wrap(err, ErrCodeInvalidDefaults, "failed to parse TOML defaults")
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Keep integers integral
		if err := decoder.Decode(&values); err != nil {
			return errors.Wrap(err, ErrCodeInvalidDefaults, "failed to parse JSON defaults")
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return errors.Wrap(err, ErrCodeInvalidDefaults, "failed to parse YAML defaults")
		}
	default:
		return errors.New(ErrCodeUnsupportedEncoding, fmt.Sprintf("unable to determine defaults format %q", format))
	}
	return s.ApplyDefaults(values)
}

// ApplyDefaults overrides defaults from a nested scope -> param -> value map.
// Every key is checked before any default changes.
func (s *Schema) ApplyDefaults(values map[string]any) error {
	flat := flattenMap(values, "")

	type update struct {
		name  string
		value any
	}
	updates := make([]update, 0, len(flat))

	for key, value := range flat {
		scopeName, name, ok := splitDefaultsKey(key)
		if !ok {
			return errors.New(ErrCodeInvalidDefaults, fmt.Sprintf("defaults key %q is not <scope>.<param>", key)).
				WithContext("key", key)
		}
		scope, ok := ParseScope(strings.ToLower(scopeName))
		if !ok {
			return errors.New(ErrCodeInvalidDefaults, fmt.Sprintf("unknown scope %q", scopeName)).
				WithContext("key", key)
		}
		p, ok := s.Lookup(name)
		if !ok || p.Scope != scope {
			return errors.New(ErrCodeInvalidDefaults, fmt.Sprintf("no %s parameter named %s", scope, name)).
				WithContext("key", key)
		}
		if p.Opens {
			return errors.New(ErrCodeInvalidDefaults, fmt.Sprintf("opening keyword %s cannot have a default", name)).
				WithContext("key", key)
		}
		v := normalizeValue(value)
		if _, err := p.coerceAny(v); err != nil {
			return errors.Wrap(err, ErrCodeInvalidDefaults, fmt.Sprintf("bad default for %s", key)).
				WithContext("key", key)
		}
		updates = append(updates, update{name: p.Name, value: v})
	}

	for _, u := range updates {
		if err := s.SetDefault(u.name, u.value); err != nil {
			return err
		}
	}
	return nil
}

// normalizeValue maps decoder number types onto int and float64.
func normalizeValue(v any) any {
	switch tv := v.(type) {
	case json.Number:
		if i, err := tv.Int64(); err == nil {
			return int(i)
		}
		if f, err := tv.Float64(); err == nil {
			return f
		}
		return tv.String()
	case int64:
		return int(tv)
	case float32:
		return float64(tv)
	}
	return v
}

// DefaultsMap returns the current defaults nested by scope.
// Enumerated values are given by state name.
func (s *Schema) DefaultsMap() map[string]any {
	nested := make(map[string]any)
	for _, scope := range allScopes {
		for _, p := range s.Params(scope) {
			v, ok := s.Default(p.Name)
			if !ok {
				continue
			}
			if e, isEnum := v.(Enum); isEnum {
				v = e.Get()
			}
			setNestedValue(nested, scope.String()+"."+p.Name, v)
		}
	}
	return nested
}

// SaveDefaults writes the current defaults to a TOML file atomically.
func (s *Schema) SaveDefaults(path string) error {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(s.DefaultsMap()); err != nil {
		return errors.Wrap(err, ErrCodeIO, "failed to marshal defaults to TOML")
	}
	return atomicWriteFile(path, buf.Bytes())
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, ErrCodeIO, fmt.Sprintf("failed to create directory '%s'", dir))
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, ErrCodeIO, "failed to create temporary file")
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return errors.Wrap(err, ErrCodeIO, "failed to write temporary file")
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return errors.Wrap(err, ErrCodeIO, "failed to sync temporary file")
	}

	if err := tempFile.Close(); err != nil {
		return errors.Wrap(err, ErrCodeIO, "failed to close temporary file")
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return errors.Wrap(err, ErrCodeIO, "failed to set permissions")
	}

	if err := os.Rename(tempPath, path); err != nil {
		return errors.Wrap(err, ErrCodeIO, "failed to rename temporary file")
	}

	return nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// TOML before YAML, flat "key = value" text parses as both
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
