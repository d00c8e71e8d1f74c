// FILE: lixenwraith/lconfig/enum.go
package lconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// EnumDomain is the immutable set of legal states for an enumerated parameter.
// Domains are shared by reference between every Enum built from them;
// only the selected index is per-value.
type EnumDomain struct {
	name    string
	states  []string
	codes   []int // nil when states are addressed by index
	aliases map[string]int
}

// NewEnumDomain builds a domain. codes may be nil; otherwise it must hold
// one unique integer per state.
func NewEnumDomain(name string, states []string, codes []int) (*EnumDomain, error) {
	if len(states) == 0 {
		return nil, errors.New(ErrCodeInvalidEnumDomain, "enumeration needs at least one state").
			WithContext("enum", name)
	}
	if codes != nil && len(codes) != len(states) {
		return nil, errors.New(ErrCodeInvalidEnumDomain,
			fmt.Sprintf("enumeration has %d states but %d codes", len(states), len(codes))).
			WithContext("enum", name)
	}

	seenState := make(map[string]bool, len(states))
	for _, s := range states {
		if seenState[s] {
			return nil, errors.New(ErrCodeInvalidEnumDomain, fmt.Sprintf("duplicate state %q", s)).
				WithContext("enum", name)
		}
		seenState[s] = true
	}
	if codes != nil {
		seenCode := make(map[int]bool, len(codes))
		for _, c := range codes {
			if seenCode[c] {
				return nil, errors.New(ErrCodeInvalidEnumDomain, fmt.Sprintf("duplicate code %d", c)).
					WithContext("enum", name)
			}
			seenCode[c] = true
		}
	}

	d := &EnumDomain{
		name:   name,
		states: append([]string(nil), states...),
	}
	if codes != nil {
		d.codes = append([]int(nil), codes...)
	}
	return d, nil
}

// MustEnumDomain is like NewEnumDomain but panics on error
func MustEnumDomain(name string, states []string, codes []int) *EnumDomain {
	d, err := NewEnumDomain(name, states, codes)
	if err != nil {
		panic(fmt.Sprintf("enum domain %s: %v", name, err))
	}
	return d
}

// withAliases returns the domain after registering alternate spellings.
// Only used while building the package-level domains.
func (d *EnumDomain) withAliases(aliases map[string]string) *EnumDomain {
	d.aliases = make(map[string]int, len(aliases))
	for alias, state := range aliases {
		idx := d.lookupName(state)
		if idx < 0 {
			panic(fmt.Sprintf("enum domain %s: alias %q targets unknown state %q", d.name, alias, state))
		}
		d.aliases[alias] = idx
	}
	return d
}

// Name returns the domain name.
func (d *EnumDomain) Name() string { return d.name }

// States returns a copy of the state names in order.
func (d *EnumDomain) States() []string {
	return append([]string(nil), d.states...)
}

// HasCodes reports whether explicit integer codes were supplied.
func (d *EnumDomain) HasCodes() bool { return d.codes != nil }

// Len returns the number of states.
func (d *EnumDomain) Len() int { return len(d.states) }

// At returns the value selecting state index i.
func (d *EnumDomain) At(i int) Enum {
	if i < 0 || i >= len(d.states) {
		panic(fmt.Sprintf("enum domain %s: index %d out of range", d.name, i))
	}
	return Enum{domain: d, index: i}
}

// Parse resolves token to a value of this domain.
func (d *EnumDomain) Parse(token string) (Enum, error) {
	e := Enum{domain: d}
	if err := e.Set(token); err != nil {
		return Enum{}, err
	}
	return e, nil
}

// MustParse is like Parse but panics on error
func (d *EnumDomain) MustParse(token string) Enum {
	e, err := d.Parse(token)
	if err != nil {
		panic(err.Error())
	}
	return e
}

func (d *EnumDomain) lookupName(s string) int {
	for i, state := range d.states {
		if state == s {
			return i
		}
	}
	return -1
}

func (d *EnumDomain) lookupCode(code int) int {
	if d.codes == nil {
		if code >= 0 && code < len(d.states) {
			return code
		}
		return -1
	}
	for i, c := range d.codes {
		if c == code {
			return i
		}
	}
	return -1
}

// Enum is one enumerated value: a shared domain plus a selected state.
// Copying an Enum copies the selection, never the domain.
type Enum struct {
	domain *EnumDomain
	index  int
}

// FromEnum returns a value sharing proto's domain and selection.
func FromEnum(proto Enum) Enum {
	return Enum{domain: proto.domain, index: proto.index}
}

// Set selects a state by name, alias or integer code.
// Without codes the integer is the state index.
func (e *Enum) Set(token string) error {
	if e.domain == nil {
		return errors.New(ErrCodeUnrecognizedState, "enumerated value has no domain")
	}
	token = strings.TrimSpace(token)

	if idx := e.domain.lookupName(token); idx >= 0 {
		e.index = idx
		return nil
	}
	if idx, ok := e.domain.aliases[token]; ok {
		e.index = idx
		return nil
	}
	if code, err := strconv.Atoi(token); err == nil {
		if idx := e.domain.lookupCode(code); idx >= 0 {
			e.index = idx
			return nil
		}
	}

	return errors.New(ErrCodeUnrecognizedState, fmt.Sprintf("unrecognized %s state %q", e.domain.name, token)).
		WithContext("enum", e.domain.name).
		WithContext("value", token)
}

// SetCode selects the state carrying the given code.
func (e *Enum) SetCode(code int) error {
	return e.Set(strconv.Itoa(code))
}

// Valid reports whether the value is bound to a domain.
func (e Enum) Valid() bool { return e.domain != nil }

// Domain returns the shared domain.
func (e Enum) Domain() *EnumDomain { return e.domain }

// Get returns the selected state name.
func (e Enum) Get() string {
	if e.domain == nil {
		return ""
	}
	return e.domain.states[e.index]
}

// String implements fmt.Stringer.
func (e Enum) String() string { return e.Get() }

// Index returns the selected state index.
func (e Enum) Index() int { return e.index }

// Code returns the selected state's code, or its index when the domain has no codes.
func (e Enum) Code() int {
	if e.domain == nil || e.domain.codes == nil {
		return e.index
	}
	return e.domain.codes[e.index]
}

// Is reports whether the selected state is named s (aliases accepted).
func (e Enum) Is(s string) bool {
	if e.domain == nil {
		return false
	}
	if e.domain.states[e.index] == s {
		return true
	}
	idx, ok := e.domain.aliases[s]
	return ok && idx == e.index
}

// Equal compares by code when codes are present, by index otherwise.
func (e Enum) Equal(o Enum) bool {
	if e.domain != o.domain {
		return false
	}
	return e.Code() == o.Code()
}

// Less orders values by code when codes are present, by index otherwise.
func (e Enum) Less(o Enum) bool {
	return e.Code() < o.Code()
}
