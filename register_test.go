// FILE: lixenwraith/lconfig/register_test.go
package lconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultSchema checks the builtin tables
func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()

	t.Run("LookupByAlias", func(t *testing.T) {
		p, ok := s.Lookup("aiunits")
		require.True(t, ok)
		assert.Equal(t, "aicalunits", p.Name)

		p, ok = s.Lookup("FIOCHANNEL")
		require.True(t, ok)
		assert.Equal(t, "efchannel", p.Name)
		assert.True(t, p.Opens)
		assert.Equal(t, ScopeEF, p.Scope)
	})

	t.Run("Defaults", func(t *testing.T) {
		v, ok := s.Default("aicalslope")
		require.True(t, ok)
		assert.Equal(t, 1.0, v)

		v, ok = s.Default("aicalzero")
		require.True(t, ok)
		assert.Equal(t, 0.0, v)

		v, ok = s.Default("ainegative")
		require.True(t, ok)
		assert.Equal(t, GroundChannel, v.(Enum).Code())

		v, ok = s.Default("ailabel")
		require.True(t, ok)
		assert.Equal(t, "", v)

		_, ok = s.Default("samplehz")
		assert.False(t, ok, "samplehz has no default")
		_, ok = s.Default("aichannel")
		assert.False(t, ok, "opening keywords have no default")
	})

	t.Run("OneOpenerPerScope", func(t *testing.T) {
		for _, scope := range allScopes {
			p, ok := s.opener(scope)
			require.True(t, ok, scope.String())
			assert.Equal(t, scope, p.Scope)
		}
	})

	t.Run("ParamsSorted", func(t *testing.T) {
		params := s.Params(ScopeAO)
		require.NotEmpty(t, params)
		for i := 1; i < len(params); i++ {
			assert.Less(t, params[i-1].Name, params[i].Name)
		}
	})

	t.Run("IndependentCopies", func(t *testing.T) {
		other := DefaultSchema()
		require.NoError(t, other.SetDefault("airange", 1.0))

		v, _ := s.Default("airange")
		assert.Equal(t, 10.0, v)
		v, _ = other.Default("airange")
		assert.Equal(t, 1.0, v)
	})
}

// TestSchemaRegistration tests adding and removing parameters
func TestSchemaRegistration(t *testing.T) {
	gain := func() *Param {
		return &Param{
			Name:    "aigain",
			Aliases: []string{"gain"},
			Scope:   ScopeAI,
			Kind:    KindFloat,
			field:   func(rec any) slot { return &rec.(*AIChannel).Range },
		}
	}

	t.Run("RegisterAndUnregister", func(t *testing.T) {
		s := newSchema()
		require.NoError(t, s.register(gain(), 2))

		v, ok := s.Default("gain")
		require.True(t, ok)
		assert.Equal(t, 2.0, v)

		require.NoError(t, s.Unregister("gain"))
		_, ok = s.Lookup("aigain")
		assert.False(t, ok)
		_, ok = s.Lookup("gain")
		assert.False(t, ok)

		err := s.Unregister("aigain")
		assert.True(t, HasCode(err, ErrCodeUnrecognizedParam))
	})

	t.Run("UnregisterBuiltin", func(t *testing.T) {
		s := DefaultSchema()
		require.NoError(t, s.Unregister("airange"))

		_, err := loadString("connection usb\naichannel 0\nairange 1\n", func(o *LoadOptions) { o.Schema = s })
		assert.True(t, HasCode(err, ErrCodeUnrecognizedParam))

		f := mustLoadString(t, "connection usb\naichannel 0\nairange 1\n")
		assert.Equal(t, 1.0, f.Devices[0].AI[0].Range.Value, "other schemas keep the keyword")
	})

	t.Run("Duplicate", func(t *testing.T) {
		s := newSchema()
		require.NoError(t, s.register(gain(), nil))
		err := s.register(gain(), nil)
		assert.True(t, HasCode(err, ErrCodeDuplicateParameter))

		alias := gain()
		alias.Name = "gain"
		alias.Aliases = nil
		err = s.register(alias, nil)
		assert.True(t, HasCode(err, ErrCodeDuplicateParameter))
	})

	t.Run("InvalidParams", func(t *testing.T) {
		s := newSchema()
		assert.True(t, HasCode(s.register(nil, nil), ErrCodeInvalidArgument))
		assert.True(t, HasCode(s.register(&Param{Name: "unbound"}, nil), ErrCodeInvalidArgument))

		p := gain()
		p.Kind = KindEnum
		assert.True(t, HasCode(s.register(p, nil), ErrCodeInvalidArgument))
	})

	t.Run("BadDefault", func(t *testing.T) {
		s := newSchema()
		err := s.register(gain(), "high")
		assert.True(t, HasCode(err, ErrCodeConversion))
	})
}

func TestSchemaClone(t *testing.T) {
	s := DefaultSchema()
	require.NoError(t, s.SetDefault("airange", 5.0))

	c := s.Clone()
	v, ok := c.Default("airange")
	require.True(t, ok)
	assert.Equal(t, 5.0, v)
	_, ok = c.Lookup("fiochannel")
	assert.True(t, ok, "aliases are copied")

	require.NoError(t, c.SetDefault("airange", 1.0))
	require.NoError(t, c.Unregister("aicalunits"))

	v, _ = s.Default("airange")
	assert.Equal(t, 5.0, v)
	_, ok = s.Lookup("aicalunits")
	assert.True(t, ok)
}

func TestSetDefault(t *testing.T) {
	s := DefaultSchema()

	t.Run("Coerces", func(t *testing.T) {
		require.NoError(t, s.SetDefault("nsample", 128.0))
		v, _ := s.Default("nsample")
		assert.Equal(t, 128, v)

		require.NoError(t, s.SetDefault("airange", "0.1"))
		v, _ = s.Default("airange")
		assert.Equal(t, 0.1, v)

		require.NoError(t, s.SetDefault("aosignal", "Sine"))
		v, _ = s.Default("aosignal")
		assert.Equal(t, "sine", v.(Enum).Get())
	})

	t.Run("Rejects", func(t *testing.T) {
		assert.True(t, HasCode(s.SetDefault("nsample", 1.5), ErrCodeConversion))
		assert.True(t, HasCode(s.SetDefault("efsignal", "laser"), ErrCodeUnrecognizedState))
		assert.True(t, HasCode(s.SetDefault("nosuch", 1), ErrCodeUnrecognizedParam))
	})

	t.Run("NilClears", func(t *testing.T) {
		require.NoError(t, s.SetDefault("comrate", nil))
		_, ok := s.Default("comrate")
		assert.False(t, ok)
	})
}

func TestRegisterStruct(t *testing.T) {
	type aiDefaults struct {
		Range      float64 `lconfig:"airange"`
		Units      string  `lconfig:"aicalunits"`
		AICalSlope float64 // lower-cased field name is the key
		Skipped    string  `lconfig:"-"`
		hidden     int
	}

	t.Run("OverridesSetFields", func(t *testing.T) {
		s := DefaultSchema()
		err := s.RegisterStruct(ScopeAI, &aiDefaults{Range: 1, AICalSlope: 2, Skipped: "x", hidden: 3})
		require.NoError(t, err)

		v, _ := s.Default("airange")
		assert.Equal(t, 1.0, v)
		v, _ = s.Default("aicalslope")
		assert.Equal(t, 2.0, v)
		v, _ = s.Default("aicalunits")
		assert.Equal(t, "V", v, "zero fields leave defaults alone")
	})

	t.Run("WrongScope", func(t *testing.T) {
		s := DefaultSchema()
		err := s.RegisterStruct(ScopeDevice, aiDefaults{Range: 1})
		assert.True(t, HasCode(err, ErrCodeUnrecognizedParam))
	})

	t.Run("NotAStruct", func(t *testing.T) {
		s := DefaultSchema()
		err := s.RegisterStruct(ScopeAI, 42)
		assert.True(t, HasCode(err, ErrCodeInvalidArgument))
	})
}

func TestCoerce(t *testing.T) {
	s := DefaultSchema()

	tests := []struct {
		param   string
		word    string
		want    any
		errCode string
	}{
		{"samplehz", "1e3", 1000.0, ""},
		{"nsample", "64", 64, ""},
		{"nsample", "6.4", nil, ErrCodeConversion},
		{"samplehz", "fast", nil, ErrCodeConversion},
		{"serial", "Abc 1", "Abc 1", ""},
		{"connection", "usb", ConnectionDomain.MustParse("usb"), ""},
		{"connection", "wifi", nil, ErrCodeUnrecognizedState},
	}

	for _, tt := range tests {
		t.Run(tt.param+"="+tt.word, func(t *testing.T) {
			p, ok := s.Lookup(tt.param)
			require.True(t, ok)

			v, err := p.Coerce(tt.word)
			if tt.errCode != "" {
				assert.True(t, HasCode(err, tt.errCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}
