// FILE: lixenwraith/lconfig/parser.go
package lconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/rs/zerolog"
)

// metaMode is the implicit type given to unrecognized keywords.
type metaMode int

const (
	metaNone metaMode = iota
	metaString
	metaInt
	metaFloat
)

var metaModes = map[string]metaMode{
	"str": metaString, "string": metaString,
	"int": metaInt, "integer": metaInt,
	"flt": metaFloat, "float": metaFloat,
	"none": metaNone, "end": metaNone, "stop": metaNone,
}

var metaPrefixes = map[string]metaMode{
	"str:": metaString,
	"int:": metaInt,
	"flt:": metaFloat,
}

// stanzaParser routes parameter/value pairs into device records.
type stanzaParser struct {
	schema  *Schema
	logger  zerolog.Logger
	devices []*Device
	current *Device // nil until the first connection
	meta    metaMode
}

func newStanzaParser(schema *Schema, logger zerolog.Logger) *stanzaParser {
	return &stanzaParser{schema: schema, logger: logger}
}

// parseHeader consumes pairs until the header ends.
// ended reports whether the "##" terminator was found.
func (p *stanzaParser) parseHeader(tok *Tokenizer) (ended bool, err error) {
	for {
		param, value, ok, end, err := tok.NextPair()
		if err != nil {
			return false, err
		}
		if !ok {
			return end, nil
		}
		if err := p.apply(param, value); err != nil {
			return false, err
		}
	}
}

// apply stores one pair.
func (p *stanzaParser) apply(param, value Token) error {
	name := param.Text
	def, known := p.schema.Lookup(name)

	// A device-opening keyword always starts a new stanza
	if known && def.Opens && def.Scope == ScopeDevice {
		return p.openDevice(def, param, value)
	}

	if p.current == nil {
		return errors.New(ErrCodeMissingDevice, "missing CONNECTION parameter").
			WithContext("param", name).
			WithContext("line", param.Line)
	}

	if known {
		if def.Opens {
			p.current.open(def.Scope)
			p.logger.Debug().
				Str("scope", def.Scope.String()).
				Int("device", len(p.devices)-1).
				Int("line", param.Line).
				Msg("channel opened")
		}
		return p.store(def, param, value)
	}

	if name == "meta" {
		mode, ok := metaModes[value.Text]
		if !ok {
			return errors.New(ErrCodeUnrecognizedParam, fmt.Sprintf("unrecognized meta flag %q", value.Text)).
				WithContext("param", name).
				WithContext("line", param.Line)
		}
		p.meta = mode
		p.logger.Debug().Str("mode", value.Text).Int("line", param.Line).Msg("meta mode")
		return nil
	}

	if len(name) > 4 {
		if mode, ok := metaPrefixes[name[:4]]; ok {
			return p.storeMeta(name[4:], mode, param, value)
		}
	}

	if p.meta != metaNone {
		return p.storeMeta(name, p.meta, param, value)
	}

	return errors.New(ErrCodeUnrecognizedParam, fmt.Sprintf("unrecognized parameter: %s", name)).
		WithContext("param", name).
		WithContext("line", param.Line)
}

func (p *stanzaParser) openDevice(def *Param, param, value Token) error {
	dev := newDevice()
	v, err := def.Coerce(value.Text)
	if err != nil {
		return withLine(err, param.Line)
	}
	if err := def.fieldOf(dev).assign(v); err != nil {
		return errors.Wrap(err, ErrCodeConversion, "failed to store "+def.Name)
	}

	p.devices = append(p.devices, dev)
	p.current = dev
	p.logger.Debug().
		Int("device", len(p.devices)-1).
		Str("connection", value.Text).
		Int("line", param.Line).
		Msg("device opened")
	return nil
}

// store coerces value and writes it into the active record of def's scope.
func (p *stanzaParser) store(def *Param, param, value Token) error {
	n := p.current.count(def.Scope)
	if n == 0 {
		opener, _ := p.schema.opener(def.Scope)
		msg := fmt.Sprintf("parameter %s needs an open %s channel", def.Name, def.Scope)
		if opener != nil {
			msg = fmt.Sprintf("parameter %s appears before any %s", def.Name, strings.ToUpper(opener.Name))
		}
		return errors.New(ErrCodeMissingChannel, msg).
			WithContext("param", def.Name).
			WithContext("line", param.Line)
	}
	rec := p.current.record(def.Scope, n-1)

	v, err := def.Coerce(value.Text)
	if err != nil {
		return withLine(err, param.Line)
	}

	if ch, ok := rec.(*AIChannel); ok && def.Name == "ainegative" {
		if v, err = resolveNegative(ch, v.(Enum)); err != nil {
			return withLine(err, param.Line)
		}
	}

	if err := def.fieldOf(rec).assign(v); err != nil {
		return errors.Wrap(err, ErrCodeConversion, "failed to store "+def.Name).
			WithContext("line", param.Line)
	}
	return nil
}

// resolveNegative turns a "differential" request into the odd partner of an
// even positive channel.
func resolveNegative(ch *AIChannel, neg Enum) (Enum, error) {
	if !neg.Is("differential") {
		return neg, nil
	}
	pos, ok := ch.Channel.Get()
	if !ok {
		return Enum{}, errors.New(ErrCodeConversion, "differential negative input needs a channel number").
			WithContext("param", "ainegative")
	}
	if pos < 0 || pos%2 != 0 || pos+1 > MaxAIChannel {
		return Enum{}, errors.New(ErrCodeConversion,
			fmt.Sprintf("differential measurement is not available on channel %d", pos)).
			WithContext("param", "ainegative")
	}
	if err := neg.SetCode(pos + 1); err != nil {
		return Enum{}, err
	}
	return neg, nil
}

func (p *stanzaParser) storeMeta(key string, mode metaMode, param, value Token) error {
	var v any
	switch mode {
	case metaInt:
		i, err := strconv.Atoi(value.Text)
		if err != nil {
			return errors.Wrap(err, ErrCodeConversion, fmt.Sprintf("failed to convert value %q for meta parameter %s", value.Text, key)).
				WithContext("param", key).
				WithContext("line", param.Line)
		}
		v = i
	case metaFloat:
		f, err := strconv.ParseFloat(value.Text, 64)
		if err != nil {
			return errors.Wrap(err, ErrCodeConversion, fmt.Sprintf("failed to convert value %q for meta parameter %s", value.Text, key)).
				WithContext("param", key).
				WithContext("line", param.Line)
		}
		v = f
	default:
		v = value.Text
	}
	p.current.Meta[key] = v
	return nil
}

// withLine tags a parse error with the header line it came from.
func withLine(err error, line int) error {
	return annotate(err, "line", line)
}
