// FILE: lixenwraith/lconfig/model.go
package lconfig

import "fmt"

// Optional holds a value together with an explicit presence flag,
// so an explicit zero is never confused with "not set".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// Or returns the value if set, def otherwise.
func (o Optional[T]) Or(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}

// assign stores a value already coerced to T.
func (o *Optional[T]) assign(v any) error {
	tv, ok := v.(T)
	if !ok {
		return fmt.Errorf("cannot store %T in %T field", v, o.Value)
	}
	o.Value = tv
	o.Set = true
	return nil
}

func (o *Optional[T]) lookup() (any, bool) {
	if !o.Set {
		return nil, false
	}
	return o.Value, true
}

// slot is a record field addressed through the schema.
type slot interface {
	assign(v any) error
	lookup() (any, bool)
}

// AIChannel is an analog input channel stanza.
type AIChannel struct {
	Channel    Optional[int]
	Negative   Optional[Enum]
	Range      Optional[float64]
	Resolution Optional[int]
	CalSlope   Optional[float64]
	CalZero    Optional[float64]
	CalUnits   Optional[string]
	Label      Optional[string]
}

// AOChannel is an analog output channel stanza.
type AOChannel struct {
	Channel   Optional[int]
	Signal    Optional[Enum]
	Frequency Optional[float64]
	Amplitude Optional[float64]
	Offset    Optional[float64]
	Duty      Optional[float64]
	Label     Optional[string]
}

// EFChannel is a flexible (extended feature) digital IO channel stanza.
type EFChannel struct {
	Channel   Optional[int]
	Signal    Optional[Enum]
	Edge      Optional[Enum]
	Debounce  Optional[Enum]
	Direction Optional[Enum]
	USec      Optional[float64]
	Degrees   Optional[float64]
	Duty      Optional[float64]
	Counts    Optional[int]
	Label     Optional[string]
}

// COMChannel is a digital communication channel stanza.
type COMChannel struct {
	Type    Optional[Enum]
	Rate    Optional[float64]
	PinIn   Optional[int]
	PinOut  Optional[int]
	PinClk  Optional[int]
	Options Optional[string]
	Label   Optional[string]
}

// Device is one connection stanza with its channels and metadata.
type Device struct {
	Connection  Optional[Enum]
	Type        Optional[Enum]
	Serial      Optional[string]
	Name        Optional[string]
	IP          Optional[string]
	Gateway     Optional[string]
	Subnet      Optional[string]
	SampleHz    Optional[float64]
	SettleUS    Optional[float64]
	NSample     Optional[int]
	DIStream    Optional[int]
	TrigChannel Optional[int]
	TrigLevel   Optional[float64]
	TrigPre     Optional[int]
	TrigEdge    Optional[Enum]
	EFFrequency Optional[float64]

	AI  []*AIChannel
	AO  []*AOChannel
	EF  []*EFChannel
	COM []*COMChannel

	// Meta holds free-form parameters: int, float64 or string values.
	Meta map[string]any
}

func newDevice() *Device {
	return &Device{Meta: make(map[string]any)}
}

// Scope identifies which record a parameter belongs to.
type Scope int

const (
	ScopeDevice Scope = iota
	ScopeAI
	ScopeAO
	ScopeEF
	ScopeCOM
)

var scopeNames = [...]string{"device", "ai", "ao", "ef", "com"}

// String implements fmt.Stringer.
func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return fmt.Sprintf("scope(%d)", int(s))
	}
	return scopeNames[s]
}

// ParseScope resolves a scope name; "fio" is accepted for "ef".
func ParseScope(name string) (Scope, bool) {
	if name == "fio" {
		return ScopeEF, true
	}
	for i, n := range scopeNames {
		if n == name {
			return Scope(i), true
		}
	}
	return 0, false
}

// count returns how many records of the scope d owns.
func (d *Device) count(s Scope) int {
	switch s {
	case ScopeDevice:
		return 1
	case ScopeAI:
		return len(d.AI)
	case ScopeAO:
		return len(d.AO)
	case ScopeEF:
		return len(d.EF)
	case ScopeCOM:
		return len(d.COM)
	}
	return 0
}

// record returns the i-th record of the scope (the device itself for ScopeDevice).
func (d *Device) record(s Scope, i int) any {
	switch s {
	case ScopeDevice:
		return d
	case ScopeAI:
		return d.AI[i]
	case ScopeAO:
		return d.AO[i]
	case ScopeEF:
		return d.EF[i]
	case ScopeCOM:
		return d.COM[i]
	}
	return nil
}

// open appends an empty record of a channel scope and returns it.
func (d *Device) open(s Scope) any {
	switch s {
	case ScopeAI:
		ch := &AIChannel{}
		d.AI = append(d.AI, ch)
		return ch
	case ScopeAO:
		ch := &AOChannel{}
		d.AO = append(d.AO, ch)
		return ch
	case ScopeEF:
		ch := &EFChannel{}
		d.EF = append(d.EF, ch)
		return ch
	case ScopeCOM:
		ch := &COMChannel{}
		d.COM = append(d.COM, ch)
		return ch
	}
	return nil
}

// label returns the label field of a channel record.
func label(rec any) Optional[string] {
	switch r := rec.(type) {
	case *AIChannel:
		return r.Label
	case *AOChannel:
		return r.Label
	case *EFChannel:
		return r.Label
	case *COMChannel:
		return r.Label
	}
	return Optional[string]{}
}
