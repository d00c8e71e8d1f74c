// File: lixenwraith/lconfig/type.go
package lconfig

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/agilira/go-errors"
)

// String resolves a parameter as a string.
// Enumerated values return their state name, numbers their decimal form.
func (c *Config) String(dev int, param string, sel ...ChannelSelector) (string, error) {
	val, err := c.Get(dev, param, sel...)
	if err != nil {
		return "", err
	}

	switch v := val.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", convertError(val, "string", param)
}

// Int resolves a parameter as an int.
// Floats are accepted only when integral; enumerated values yield their code.
func (c *Config) Int(dev int, param string, sel ...ChannelSelector) (int, error) {
	val, err := c.Get(dev, param, sel...)
	if err != nil {
		return 0, err
	}

	if e, ok := val.(Enum); ok {
		return e.Code(), nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != float64(int(f)) {
			return 0, convertError(val, "int", param)
		}
		return int(f), nil
	case reflect.String:
		i, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, errors.Wrap(err, ErrCodeConversion, fmt.Sprintf("cannot convert string %q to int for parameter %s", v.String(), param)).
				WithContext("param", param)
		}
		return i, nil
	}
	return 0, convertError(val, "int", param)
}

// Float64 resolves a parameter as a float64.
func (c *Config) Float64(dev int, param string, sel ...ChannelSelector) (float64, error) {
	val, err := c.Get(dev, param, sel...)
	if err != nil {
		return 0, err
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.String:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, errors.Wrap(err, ErrCodeConversion, fmt.Sprintf("cannot convert string %q to float64 for parameter %s", v.String(), param)).
				WithContext("param", param)
		}
		return f, nil
	}
	return 0, convertError(val, "float64", param)
}

// Enum resolves an enumerated parameter.
func (c *Config) Enum(dev int, param string, sel ...ChannelSelector) (Enum, error) {
	val, err := c.Get(dev, param, sel...)
	if err != nil {
		return Enum{}, err
	}
	if e, ok := val.(Enum); ok {
		return e, nil
	}
	return Enum{}, convertError(val, "enum", param)
}

func convertError(val any, to, param string) error {
	return errors.New(ErrCodeConversion, fmt.Sprintf("cannot convert %T to %s for parameter %s", val, to, param)).
		WithContext("param", param)
}
