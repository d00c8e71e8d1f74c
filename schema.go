// FILE: lixenwraith/lconfig/schema.go
package lconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// Kind is the value type a parameter's word is coerced to.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindEnum
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Enumerated value domains shared by every parsed file.
var (
	ConnectionDomain = MustEnumDomain("connection",
		[]string{"any", "usb", "eth"}, []int{0, 1, 3}).
		withAliases(map[string]string{"ethernet": "eth"})

	DeviceTypeDomain = MustEnumDomain("device",
		[]string{"any", "t4", "t7", "digit"}, []int{0, 4, 7, 200})

	NegativeDomain = newNegativeDomain()

	AOSignalDomain = MustEnumDomain("aosignal",
		[]string{"constant", "sine", "square", "triangle", "noise"}, nil)

	EFSignalDomain = MustEnumDomain("efsignal",
		[]string{"none", "pwm", "count", "frequency", "phase", "quadrature"}, nil).
		withAliases(map[string]string{"counter": "count"})

	EdgeDomain = MustEnumDomain("edge",
		[]string{"rising", "falling", "any"}, nil).
		withAliases(map[string]string{"all": "any"})

	DebounceDomain = MustEnumDomain("debounce",
		[]string{"none", "fixed", "reset", "minimum"}, nil)

	DirectionDomain = MustEnumDomain("direction",
		[]string{"input", "output"}, nil)

	COMTypeDomain = MustEnumDomain("comchannel",
		[]string{"none", "uart", "1wire", "spi", "i2c", "sbus"}, nil)
)

// newNegativeDomain lists one state per possible negative input, ground,
// and the "differential" request that the parser resolves to a concrete channel.
func newNegativeDomain() *EnumDomain {
	states := make([]string, 0, MaxAIChannel+3)
	codes := make([]int, 0, MaxAIChannel+3)
	for ch := 0; ch <= MaxAIChannel; ch++ {
		states = append(states, "ain"+strconv.Itoa(ch))
		codes = append(codes, ch)
	}
	states = append(states, "ground", "differential")
	codes = append(codes, GroundChannel, -1)
	return MustEnumDomain("ainegative", states, codes)
}

// Param describes one header keyword.
type Param struct {
	Name    string
	Aliases []string
	Scope   Scope
	Kind    Kind
	Domain  *EnumDomain // KindEnum only
	Opens   bool        // opening keyword: starts a new record of Scope

	field func(rec any) slot
}

// Coerce converts a header word to the parameter's kind.
func (p *Param) Coerce(word string) (any, error) {
	switch p.Kind {
	case KindString:
		return word, nil
	case KindInt:
		v, err := strconv.Atoi(word)
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeConversion, fmt.Sprintf("failed to convert value %q for parameter %s", word, p.Name)).
				WithContext("param", p.Name)
		}
		return v, nil
	case KindFloat:
		v, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeConversion, fmt.Sprintf("failed to convert value %q for parameter %s", word, p.Name)).
				WithContext("param", p.Name)
		}
		return v, nil
	case KindEnum:
		v, err := p.Domain.Parse(word)
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeUnrecognizedState, fmt.Sprintf("failed to convert value %q for parameter %s", word, p.Name)).
				WithContext("param", p.Name)
		}
		return v, nil
	}
	return nil, errors.New(ErrCodeConversion, fmt.Sprintf("parameter %s has unknown kind %v", p.Name, p.Kind))
}

// coerceAny converts a value from a defaults file (already typed by the
// file decoder) to the parameter's kind.
func (p *Param) coerceAny(v any) (any, error) {
	switch tv := v.(type) {
	case string:
		if p.Kind == KindEnum {
			tv = strings.ToLower(tv)
		}
		return p.Coerce(tv)
	case int:
		return p.coerceNumber(float64(tv), strconv.Itoa(tv))
	case int64:
		return p.coerceNumber(float64(tv), strconv.FormatInt(tv, 10))
	case float64:
		return p.coerceNumber(tv, strconv.FormatFloat(tv, 'g', -1, 64))
	case Enum:
		if p.Kind == KindEnum && tv.Domain() == p.Domain {
			return tv, nil
		}
	}
	if p.Kind == KindString {
		return fmt.Sprintf("%v", v), nil
	}
	return nil, errors.New(ErrCodeConversion, fmt.Sprintf("cannot use %T as %v for parameter %s", v, p.Kind, p.Name)).
		WithContext("param", p.Name)
}

func (p *Param) coerceNumber(f float64, text string) (any, error) {
	switch p.Kind {
	case KindFloat:
		return f, nil
	case KindInt:
		if f != float64(int(f)) {
			return nil, errors.New(ErrCodeConversion, fmt.Sprintf("parameter %s expects an integer, got %s", p.Name, text)).
				WithContext("param", p.Name)
		}
		return int(f), nil
	}
	return p.Coerce(text)
}

// fieldOf binds the parameter to its record field.
func (p *Param) fieldOf(rec any) slot {
	return p.field(rec)
}

// Builtin parameter tables, grouped by scope.
// Defaults follow the acquisition driver's LCONF_DEF_* values.
type builtin struct {
	param Param
	def   any
}

func builtinParams() []builtin {
	dev := func(f func(d *Device) slot) func(any) slot {
		return func(r any) slot { return f(r.(*Device)) }
	}
	ai := func(f func(c *AIChannel) slot) func(any) slot {
		return func(r any) slot { return f(r.(*AIChannel)) }
	}
	ao := func(f func(c *AOChannel) slot) func(any) slot {
		return func(r any) slot { return f(r.(*AOChannel)) }
	}
	ef := func(f func(c *EFChannel) slot) func(any) slot {
		return func(r any) slot { return f(r.(*EFChannel)) }
	}
	com := func(f func(c *COMChannel) slot) func(any) slot {
		return func(r any) slot { return f(r.(*COMChannel)) }
	}

	return []builtin{
		// Device-global
		{Param{Name: "connection", Scope: ScopeDevice, Kind: KindEnum, Domain: ConnectionDomain, Opens: true,
			field: dev(func(d *Device) slot { return &d.Connection })}, nil},
		{Param{Name: "device", Scope: ScopeDevice, Kind: KindEnum, Domain: DeviceTypeDomain,
			field: dev(func(d *Device) slot { return &d.Type })}, DeviceTypeDomain.At(0)},
		{Param{Name: "serial", Scope: ScopeDevice, Kind: KindString,
			field: dev(func(d *Device) slot { return &d.Serial })}, ""},
		{Param{Name: "name", Scope: ScopeDevice, Kind: KindString,
			field: dev(func(d *Device) slot { return &d.Name })}, ""},
		{Param{Name: "ip", Scope: ScopeDevice, Kind: KindString,
			field: dev(func(d *Device) slot { return &d.IP })}, ""},
		{Param{Name: "gateway", Scope: ScopeDevice, Kind: KindString,
			field: dev(func(d *Device) slot { return &d.Gateway })}, ""},
		{Param{Name: "subnet", Scope: ScopeDevice, Kind: KindString,
			field: dev(func(d *Device) slot { return &d.Subnet })}, ""},
		{Param{Name: "samplehz", Scope: ScopeDevice, Kind: KindFloat,
			field: dev(func(d *Device) slot { return &d.SampleHz })}, nil},
		{Param{Name: "settleus", Scope: ScopeDevice, Kind: KindFloat,
			field: dev(func(d *Device) slot { return &d.SettleUS })}, 1.0},
		{Param{Name: "nsample", Scope: ScopeDevice, Kind: KindInt,
			field: dev(func(d *Device) slot { return &d.NSample })}, 64},
		{Param{Name: "distream", Scope: ScopeDevice, Kind: KindInt,
			field: dev(func(d *Device) slot { return &d.DIStream })}, 0},
		{Param{Name: "trigchannel", Scope: ScopeDevice, Kind: KindInt,
			field: dev(func(d *Device) slot { return &d.TrigChannel })}, nil},
		{Param{Name: "triglevel", Scope: ScopeDevice, Kind: KindFloat,
			field: dev(func(d *Device) slot { return &d.TrigLevel })}, 0.0},
		{Param{Name: "trigpre", Scope: ScopeDevice, Kind: KindInt,
			field: dev(func(d *Device) slot { return &d.TrigPre })}, 0},
		{Param{Name: "trigedge", Scope: ScopeDevice, Kind: KindEnum, Domain: EdgeDomain,
			field: dev(func(d *Device) slot { return &d.TrigEdge })}, EdgeDomain.At(0)},
		{Param{Name: "effrequency", Scope: ScopeDevice, Kind: KindFloat,
			field: dev(func(d *Device) slot { return &d.EFFrequency })}, nil},

		// Analog input
		{Param{Name: "aichannel", Scope: ScopeAI, Kind: KindInt, Opens: true,
			field: ai(func(c *AIChannel) slot { return &c.Channel })}, nil},
		{Param{Name: "ainegative", Scope: ScopeAI, Kind: KindEnum, Domain: NegativeDomain,
			field: ai(func(c *AIChannel) slot { return &c.Negative })}, NegativeDomain.MustParse("ground")},
		{Param{Name: "airange", Scope: ScopeAI, Kind: KindFloat,
			field: ai(func(c *AIChannel) slot { return &c.Range })}, 10.0},
		{Param{Name: "airesolution", Scope: ScopeAI, Kind: KindInt,
			field: ai(func(c *AIChannel) slot { return &c.Resolution })}, 0},
		{Param{Name: "aicalslope", Scope: ScopeAI, Kind: KindFloat,
			field: ai(func(c *AIChannel) slot { return &c.CalSlope })}, 1.0},
		{Param{Name: "aicalzero", Scope: ScopeAI, Kind: KindFloat,
			field: ai(func(c *AIChannel) slot { return &c.CalZero })}, 0.0},
		{Param{Name: "aicalunits", Aliases: []string{"aiunits"}, Scope: ScopeAI, Kind: KindString,
			field: ai(func(c *AIChannel) slot { return &c.CalUnits })}, "V"},
		{Param{Name: "ailabel", Scope: ScopeAI, Kind: KindString,
			field: ai(func(c *AIChannel) slot { return &c.Label })}, ""},

		// Analog output
		{Param{Name: "aochannel", Scope: ScopeAO, Kind: KindInt, Opens: true,
			field: ao(func(c *AOChannel) slot { return &c.Channel })}, nil},
		{Param{Name: "aosignal", Scope: ScopeAO, Kind: KindEnum, Domain: AOSignalDomain,
			field: ao(func(c *AOChannel) slot { return &c.Signal })}, AOSignalDomain.At(0)},
		{Param{Name: "aofrequency", Scope: ScopeAO, Kind: KindFloat,
			field: ao(func(c *AOChannel) slot { return &c.Frequency })}, nil},
		{Param{Name: "aoamplitude", Scope: ScopeAO, Kind: KindFloat,
			field: ao(func(c *AOChannel) slot { return &c.Amplitude })}, 1.0},
		{Param{Name: "aooffset", Scope: ScopeAO, Kind: KindFloat,
			field: ao(func(c *AOChannel) slot { return &c.Offset })}, 2.5},
		{Param{Name: "aoduty", Scope: ScopeAO, Kind: KindFloat,
			field: ao(func(c *AOChannel) slot { return &c.Duty })}, 0.5},
		{Param{Name: "aolabel", Scope: ScopeAO, Kind: KindString,
			field: ao(func(c *AOChannel) slot { return &c.Label })}, ""},

		// Flexible digital IO
		{Param{Name: "efchannel", Aliases: []string{"fiochannel"}, Scope: ScopeEF, Kind: KindInt, Opens: true,
			field: ef(func(c *EFChannel) slot { return &c.Channel })}, nil},
		{Param{Name: "efsignal", Scope: ScopeEF, Kind: KindEnum, Domain: EFSignalDomain,
			field: ef(func(c *EFChannel) slot { return &c.Signal })}, EFSignalDomain.At(0)},
		{Param{Name: "efedge", Scope: ScopeEF, Kind: KindEnum, Domain: EdgeDomain,
			field: ef(func(c *EFChannel) slot { return &c.Edge })}, EdgeDomain.At(0)},
		{Param{Name: "efdebounce", Scope: ScopeEF, Kind: KindEnum, Domain: DebounceDomain,
			field: ef(func(c *EFChannel) slot { return &c.Debounce })}, DebounceDomain.At(0)},
		{Param{Name: "efdirection", Scope: ScopeEF, Kind: KindEnum, Domain: DirectionDomain,
			field: ef(func(c *EFChannel) slot { return &c.Direction })}, DirectionDomain.At(0)},
		{Param{Name: "efusec", Scope: ScopeEF, Kind: KindFloat,
			field: ef(func(c *EFChannel) slot { return &c.USec })}, 0.0},
		{Param{Name: "efdegrees", Scope: ScopeEF, Kind: KindFloat,
			field: ef(func(c *EFChannel) slot { return &c.Degrees })}, 0.0},
		{Param{Name: "efduty", Scope: ScopeEF, Kind: KindFloat,
			field: ef(func(c *EFChannel) slot { return &c.Duty })}, 0.5},
		{Param{Name: "efcount", Scope: ScopeEF, Kind: KindInt,
			field: ef(func(c *EFChannel) slot { return &c.Counts })}, 0},
		{Param{Name: "eflabel", Scope: ScopeEF, Kind: KindString,
			field: ef(func(c *EFChannel) slot { return &c.Label })}, ""},

		// Digital communication
		{Param{Name: "comchannel", Scope: ScopeCOM, Kind: KindEnum, Domain: COMTypeDomain, Opens: true,
			field: com(func(c *COMChannel) slot { return &c.Type })}, nil},
		{Param{Name: "comrate", Scope: ScopeCOM, Kind: KindFloat,
			field: com(func(c *COMChannel) slot { return &c.Rate })}, 9600.0},
		{Param{Name: "comin", Scope: ScopeCOM, Kind: KindInt,
			field: com(func(c *COMChannel) slot { return &c.PinIn })}, nil},
		{Param{Name: "comout", Scope: ScopeCOM, Kind: KindInt,
			field: com(func(c *COMChannel) slot { return &c.PinOut })}, nil},
		{Param{Name: "comclock", Scope: ScopeCOM, Kind: KindInt,
			field: com(func(c *COMChannel) slot { return &c.PinClk })}, nil},
		{Param{Name: "comoptions", Scope: ScopeCOM, Kind: KindString,
			field: com(func(c *COMChannel) slot { return &c.Options })}, "8n1"},
		{Param{Name: "comlabel", Scope: ScopeCOM, Kind: KindString,
			field: com(func(c *COMChannel) slot { return &c.Label })}, ""},
	}
}
