// FILE: lixenwraith/lconfig/decode.go
package lconfig

import (
	"fmt"
	"net"
	"reflect"
	"time"

	"github.com/agilira/go-errors"
	"github.com/mitchellh/mapstructure"
)

// ScanDevice decodes the device-scope parameters of device dev into target.
// Values set in the file win over schema defaults; fields use the `lconfig`
// tag or their name. Enumerated values decode to their state name, their
// code or the Enum itself depending on the field type.
func (c *Config) ScanDevice(dev int, target any) error {
	d, err := c.device(dev)
	if err != nil {
		return err
	}
	return c.unmarshal(c.resolved(d, ScopeDevice), target)
}

// ScanChannel decodes one channel record into target.
func (c *Config) ScanChannel(dev int, scope Scope, sel ChannelSelector, target any) error {
	d, err := c.device(dev)
	if err != nil {
		return err
	}
	if scope == ScopeDevice {
		return errors.New(ErrCodeInvalidArgument, "ScanChannel needs a channel scope, use ScanDevice")
	}
	i, err := resolveChannel(d, scope, sel)
	if err != nil {
		return err
	}
	return c.unmarshal(c.resolved(d.record(scope, i), scope), target)
}

// ScanMeta decodes the metadata map of device dev into target.
// String metadata converts to durations, times (RFC 3339) and IPs.
func (c *Config) ScanMeta(dev int, target any) error {
	d, err := c.device(dev)
	if err != nil {
		return err
	}
	return c.unmarshal(d.Meta, target)
}

// resolved collects every parameter of scope that has a value or a default.
func (c *Config) resolved(rec any, scope Scope) map[string]any {
	values := make(map[string]any)
	for _, p := range c.schema.Params(scope) {
		if v, ok := p.fieldOf(rec).lookup(); ok {
			values[p.Name] = v
		} else if v, ok := c.schema.Default(p.Name); ok {
			values[p.Name] = v
		}
	}
	return values
}

// unmarshal is the single decoding path for every Scan method.
func (c *Config) unmarshal(values map[string]any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New(ErrCodeInvalidArgument, fmt.Sprintf("unmarshal target must be non-nil pointer, got %T", target))
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "lconfig",
		WeaklyTypedInput: true,
		DecodeHook:       getDecodeHook(),
		ZeroFields:       true,
	})
	if err != nil {
		return errors.Wrap(err, ErrCodeInvalidArgument, "decoder creation failed")
	}

	if err := decoder.Decode(values); err != nil {
		return errors.Wrap(err, ErrCodeConversion, "decode failed")
	}
	return nil
}

// getDecodeHook returns the composite decode hook for all type conversions
func getDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		enumHookFunc(),
		stringToNetIPHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var enumType = reflect.TypeOf(Enum{})

// enumHookFunc lowers Enum values to a state name or a code.
func enumHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f != enumType || t == enumType {
			return data, nil
		}
		e := data.(Enum)
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return e.Code(), nil
		default:
			return e.Get(), nil
		}
	}
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := data.(string)
		if str == "" {
			return net.IP(nil), nil
		}
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}

		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}
