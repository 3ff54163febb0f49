package wizard

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/BlackOrder/zollpilot/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iza(t *testing.T) *registry.ProcedureConfig {
	t.Helper()
	cfg := registry.GetProcedureConfig("IZA", "v1")
	require.NotNil(t, cfg)
	return cfg
}

func field(t *testing.T, cfg *registry.ProcedureConfig, key string) registry.FieldDefinition {
	t.Helper()
	f, ok := cfg.Field(key)
	require.True(t, ok, key)
	return f
}

func completeAnswers() Answers {
	return Answers{
		"contents_description": "Wollpullover",
		"value_amount":         "12,50",
		"value_currency":       "usd",
		"origin_country":       "cn",
		"sender_name":          "Shop Ltd.",
		"sender_country":       "CN",
		"recipient_name":       "Erika Mustermann",
		"recipient_address":    "Musterstr. 1, 12345 Berlin",
		"is_gift":              "nein",
	}
}

func TestCoerce(t *testing.T) {
	cfg := iza(t)
	tests := []struct {
		field string
		raw   string
		want  any
	}{
		{"value_amount", "1.234,50", 1234.5},
		{"value_amount", "99.9", 99.9},
		{"value_currency", "eur", "EUR"},
		{"origin_country", " de ", "DE"},
		{"is_gift", "Ja", true},
		{"is_gift", "false", false},
		{"remark", "  ", nil},
	}
	for _, tt := range tests {
		got, err := Coerce(field(t, cfg, tt.field), tt.raw)
		require.NoError(t, err, tt.field)
		assert.Equal(t, tt.want, got, "%s %q", tt.field, tt.raw)
	}

	_, err := Coerce(field(t, cfg, "value_amount"), "zwölf")
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "value_amount", fe.FieldKey)
}

func TestCoerceSelect(t *testing.T) {
	cfg := registry.GetProcedureConfig("IPK", "v1")
	require.NotNil(t, cfg)
	f := field(t, cfg, "platform")

	got, err := Coerce(f, "Online-Marktplatz")
	require.NoError(t, err)
	assert.Equal(t, "marketplace", got)

	_, err = Coerce(f, "flea market")
	assert.Error(t, err)
}

func TestCheckField(t *testing.T) {
	cfg := iza(t)
	tests := []struct {
		name  string
		field string
		value any
		ok    bool
	}{
		{"required missing", "sender_name", nil, false},
		{"optional missing", "remark", nil, true},
		{"too long", "contents_description", strings.Repeat("x", 201), false},
		{"negative amount", "value_amount", -1.0, false},
		{"off step", "value_amount", 1.005, false},
		{"on step", "value_amount", 12.5, true},
		{"country", "origin_country", "DE", true},
		{"not a country", "origin_country", "ZQ", false},
		{"three letters", "origin_country", "DEU", false},
		{"currency", "value_currency", "CHF", true},
		{"bad currency", "value_currency", "ABC", false},
		{"no currency", "value_currency", "XXX", false},
		{"test currency", "value_currency", "XTS", false},
		{"franc CFA", "value_currency", "XOF", true},
		{"boolean", "is_gift", true, true},
		{"boolean as text", "is_gift", "yes", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckField(field(t, cfg, tt.field), tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCheckReportsAllFieldsInOrder(t *testing.T) {
	cfg := iza(t)
	err := Check(cfg, Answers{"value_currency": "EUR"})
	require.Error(t, err)

	var keys []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var fe *FieldError
		require.True(t, errors.As(e, &fe))
		keys = append(keys, fe.FieldKey)
	}
	assert.Equal(t, []string{
		"contents_description", "value_amount", "origin_country",
		"sender_name", "sender_country", "recipient_name", "recipient_address",
	}, keys)
}

func TestNormalizeAndCheck(t *testing.T) {
	cfg := iza(t)
	a, err := Normalize(cfg, completeAnswers())
	require.NoError(t, err)
	assert.Equal(t, 12.5, a["value_amount"])
	assert.Equal(t, "USD", a["value_currency"])
	assert.Equal(t, false, a["is_gift"])
	assert.NoError(t, Check(cfg, a))
}

func TestNormalizeDropsUnknownKeys(t *testing.T) {
	a, err := Normalize(iza(t), Answers{"value_amount": 3, "bogus": "x"})
	require.NoError(t, err)
	assert.Equal(t, Answers{"value_amount": 3.0}, a)
}

func TestNormalizeNonStringScalars(t *testing.T) {
	cfg := registry.GetProcedureConfig("IPK", "v1")
	require.NotNil(t, cfg)
	raw, err := ParseAnswers(strings.NewReader(`platform: shop
order_number: 12345
internal_reference: 7.5
goods_description: 42
goods_value: 99
goods_currency: eur
quantity: 2
seller_country: cn
buyer_is_business: false
`))
	require.NoError(t, err)

	a, err := Normalize(cfg, raw)
	require.NoError(t, err)
	assert.Equal(t, "12345", a["order_number"])
	assert.Equal(t, "7.5", a["internal_reference"])
	assert.Equal(t, "42", a["goods_description"])
	assert.Equal(t, 99.0, a["goods_value"])
	assert.Equal(t, "CN", a["seller_country"])
	assert.NoError(t, Check(cfg, a))

	_, err = Normalize(cfg, Answers{"platform": 1})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "platform", fe.FieldKey)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234", 1234},
		{"1.234.567", 1234567},
		{"1.234,5", 1234.5},
		{"12.50", 12.5},
		{"0.125", 0.125},
		{"1 000", 1000},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := parseNumber("1.23.4")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	d := Defaults(registry.GetProcedureConfig("IPK", "v1"))
	assert.Equal(t, "EUR", d["goods_currency"])
	assert.Equal(t, 1.0, d["quantity"])
	assert.Equal(t, false, d["buyer_is_business"])
	_, ok := d["goods_description"]
	assert.False(t, ok)
}

func TestFillForm(t *testing.T) {
	cfg := iza(t)
	a, err := Normalize(cfg, completeAnswers())
	require.NoError(t, err)

	entries := FillForm(cfg, a)
	require.Len(t, entries, 9)
	assert.Equal(t, "contents_description", entries[0].FieldKey)

	byKey := map[string]FormEntry{}
	for _, e := range entries {
		byKey[e.FieldKey] = e
	}
	origin := byKey["origin_country"]
	assert.Equal(t, "Herkunftsland", origin.Label)
	assert.Equal(t, `Feld „Ursprungsland"`, origin.TargetField)
	assert.True(t, strings.HasPrefix(origin.Value, "CN – "), origin.Value)
	assert.Equal(t, "Nein", byKey["is_gift"].Value)
	assert.Contains(t, byKey["value_amount"].Value, "12")

	groups := GroupByForm(entries)
	require.Len(t, groups, 2)
	assert.Equal(t, "IZA – Angaben zur Sendung", groups[0].Form)
	assert.Equal(t, "IZA – Beteiligte", groups[1].Form)
}

func TestFillFormSkipsInternalFields(t *testing.T) {
	cfg := registry.GetProcedureConfig("IPK", "v1")
	require.NotNil(t, cfg)
	entries := FillForm(cfg, Answers{"internal_reference": "note", "platform": "shop"})
	require.Len(t, entries, 1)
	assert.Equal(t, "Online-Shop des Händlers", entries[0].Value)
}

func TestAnswersRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnswers(&buf, Answers{"origin_country": "DE", "value_amount": 12.5}))
	a, err := ParseAnswers(&buf)
	require.NoError(t, err)
	assert.Equal(t, "DE", a["origin_country"])
	assert.Equal(t, 12.5, a["value_amount"])

	empty, err := ParseAnswers(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
