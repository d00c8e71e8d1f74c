// FILE: lixenwraith/lconfig/register.go
package lconfig

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/agilira/go-errors"
)

// schemaItem holds a parameter and its default value
type schemaItem struct {
	param        *Param
	defaultValue any
	hasDefault   bool
}

// Schema maps header keywords to parameters and their defaults.
// A Schema is safe for concurrent use; loaded files keep a reference to the
// schema they were parsed with so defaults resolve consistently.
type Schema struct {
	items   map[string]*schemaItem // canonical name -> item
	aliases map[string]string      // alias -> canonical name
	mutex   sync.RWMutex
}

func newSchema() *Schema {
	return &Schema{
		items:   make(map[string]*schemaItem),
		aliases: make(map[string]string),
	}
}

// DefaultSchema returns a schema holding every builtin LCONFIG parameter.
// Each call returns an independent copy whose defaults may be overridden.
func DefaultSchema() *Schema {
	s := newSchema()
	for _, b := range builtinParams() {
		p := b.param
		if err := s.register(&p, b.def); err != nil {
			panic(fmt.Sprintf("builtin parameter %s: %v", p.Name, err))
		}
	}
	return s
}

// Clone returns an independent copy with the same parameters and defaults.
func (s *Schema) Clone() *Schema {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c := newSchema()
	for name, item := range s.items {
		cp := *item
		c.items[name] = &cp
	}
	for alias, name := range s.aliases {
		c.aliases[alias] = name
	}
	return c
}

// register adds a builtin parameter bound to its record field.
// defaultValue may be nil when the parameter has no default.
func (s *Schema) register(p *Param, defaultValue any) error {
	if p == nil || p.Name == "" {
		return errors.New(ErrCodeInvalidArgument, "parameter name cannot be empty")
	}
	if p.field == nil {
		return errors.New(ErrCodeInvalidArgument, fmt.Sprintf("parameter %s is not bound to a record field", p.Name))
	}
	if p.Kind == KindEnum && p.Domain == nil {
		return errors.New(ErrCodeInvalidArgument, fmt.Sprintf("enumerated parameter %s has no domain", p.Name))
	}

	name := strings.ToLower(p.Name)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.items[name]; exists {
		return errors.New(ErrCodeDuplicateParameter, fmt.Sprintf("parameter %s already registered", name))
	}
	if _, exists := s.aliases[name]; exists {
		return errors.New(ErrCodeDuplicateParameter, fmt.Sprintf("parameter %s already registered as an alias", name))
	}

	item := &schemaItem{param: p}
	if defaultValue != nil {
		v, err := p.coerceAny(defaultValue)
		if err != nil {
			return err
		}
		item.defaultValue = v
		item.hasDefault = true
	}
	s.items[name] = item
	for _, alias := range p.Aliases {
		s.aliases[strings.ToLower(alias)] = name
	}
	return nil
}

// Unregister removes a parameter and its aliases. Files using the keyword
// then fail to load with an unrecognized parameter error.
func (s *Schema) Unregister(name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name = s.canonical(strings.ToLower(name))
	item, exists := s.items[name]
	if !exists {
		return errors.New(ErrCodeUnrecognizedParam, fmt.Sprintf("parameter not registered: %s", name))
	}
	delete(s.items, name)
	for _, alias := range item.param.Aliases {
		delete(s.aliases, strings.ToLower(alias))
	}
	return nil
}

// canonical resolves an alias; caller holds the lock.
func (s *Schema) canonical(name string) string {
	if c, ok := s.aliases[name]; ok {
		return c
	}
	return name
}

// Lookup finds a parameter by keyword or alias.
func (s *Schema) Lookup(name string) (*Param, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, ok := s.items[s.canonical(strings.ToLower(name))]
	if !ok {
		return nil, false
	}
	return item.param, true
}

// Default returns the default value of a parameter, if it has one.
func (s *Schema) Default(name string) (any, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, ok := s.items[s.canonical(strings.ToLower(name))]
	if !ok || !item.hasDefault {
		return nil, false
	}
	return item.defaultValue, true
}

// SetDefault overrides the default of a registered parameter.
// The value is coerced to the parameter's kind; nil clears the default.
func (s *Schema) SetDefault(name string, value any) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name = s.canonical(strings.ToLower(name))
	item, ok := s.items[name]
	if !ok {
		return errors.New(ErrCodeUnrecognizedParam, fmt.Sprintf("parameter not registered: %s", name)).
			WithContext("param", name)
	}
	if value == nil {
		item.defaultValue = nil
		item.hasDefault = false
		return nil
	}
	v, err := item.param.coerceAny(value)
	if err != nil {
		return err
	}
	item.defaultValue = v
	item.hasDefault = true
	return nil
}

// RegisterStruct overrides defaults of one scope from a struct.
// Field names come from the `lconfig` tag or the lower-cased field name;
// zero values are skipped so partially filled structs only touch what they set.
func (s *Schema) RegisterStruct(scope Scope, structWithDefaults any) error {
	v := reflect.ValueOf(structWithDefaults)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New(ErrCodeInvalidArgument, fmt.Sprintf("RegisterStruct requires a struct, got %T", structWithDefaults))
	}

	t := v.Type()
	var firstErr error

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("lconfig")
		if tag == "-" {
			continue
		}
		key := strings.ToLower(field.Name)
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
		}

		if fieldValue.IsZero() {
			continue
		}

		p, ok := s.Lookup(key)
		if !ok || p.Scope != scope {
			if firstErr == nil {
				firstErr = errors.New(ErrCodeUnrecognizedParam, fmt.Sprintf("no %s parameter named %s", scope, key)).
					WithContext("param", key)
			}
			continue
		}
		if err := s.SetDefault(key, fieldValue.Interface()); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Params returns the parameters of a scope, sorted by name.
func (s *Schema) Params(scope Scope) []*Param {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]*Param, 0)
	for _, item := range s.items {
		if item.param.Scope == scope {
			result = append(result, item.param)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// opener returns the opening keyword of a scope.
func (s *Schema) opener(scope Scope) (*Param, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, item := range s.items {
		if item.param.Scope == scope && item.param.Opens {
			return item.param, true
		}
	}
	return nil, false
}
