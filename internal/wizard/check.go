package wizard

import (
	"errors"
	"math"
	"unicode/utf8"

	"github.com/BlackOrder/zollpilot/internal/registry"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// stepTolerance absorbs binary rounding when checking step multiples.
const stepTolerance = 1e-6

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// CheckField validates a typed value against the field definition. It
// returns nil or a *FieldError.
func CheckField(f registry.FieldDefinition, v any) error {
	if isEmpty(v) {
		if f.Required {
			return fieldError(f, "Pflichtfeld")
		}
		return nil
	}
	c := f.Config
	switch f.FieldType {
	case registry.FieldText:
		s, ok := v.(string)
		if !ok {
			return fieldError(f, "Text erwartet")
		}
		if c.MaxLength != nil && utf8.RuneCountInString(s) > *c.MaxLength {
			return fieldError(f, "höchstens %d Zeichen", *c.MaxLength)
		}
	case registry.FieldNumber:
		n, ok := toFloat(v)
		if !ok {
			return fieldError(f, "Zahl erwartet")
		}
		if c.Min != nil && n < *c.Min {
			return fieldError(f, "mindestens %g", *c.Min)
		}
		if c.Max != nil && n > *c.Max {
			return fieldError(f, "höchstens %g", *c.Max)
		}
		if c.Step != nil {
			base := 0.0
			if c.Min != nil {
				base = *c.Min
			}
			q := (n - base) / *c.Step
			if math.Abs(q-math.Round(q)) > stepTolerance {
				return fieldError(f, "nur in Schritten von %g", *c.Step)
			}
		}
	case registry.FieldSelect:
		s, ok := v.(string)
		if !ok {
			return fieldError(f, "Auswahl erwartet")
		}
		if _, found := f.OptionLabel(s); !found {
			return fieldError(f, "%q ist keine zulässige Auswahl", s)
		}
	case registry.FieldCountry:
		s, ok := v.(string)
		if !ok || !isCountryCode(s) {
			return fieldError(f, "%v ist kein ISO-Ländercode (z. B. DE)", v)
		}
	case registry.FieldCurrency:
		s, ok := v.(string)
		if !ok || len(s) != 3 {
			return fieldError(f, "%v ist kein ISO-Währungscode (z. B. EUR)", v)
		}
		if u, err := currency.ParseISO(s); err != nil || !tenderCurrencies[u] {
			return fieldError(f, "%v ist kein ISO-Währungscode (z. B. EUR)", v)
		}
	case registry.FieldBoolean:
		if _, ok := v.(bool); !ok {
			return fieldError(f, "ja oder nein erwartet")
		}
	}
	return nil
}

// tenderCurrencies holds the units currently legal tender in some region.
// Codes such as XXX or XTS parse as ISO 4217 but are no currencies.
var tenderCurrencies = func() map[currency.Unit]bool {
	m := make(map[currency.Unit]bool)
	for it := currency.Query(); it.Next(); {
		m[it.Unit()] = true
	}
	return m
}()

// isCountryCode reports whether s is an ISO 3166-1 alpha-2 country code.
func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	r, err := language.ParseRegion(s)
	return err == nil && r.IsCountry()
}

// CheckStep validates the answers of one step in field order.
func CheckStep(step registry.StepDefinition, a Answers) []*FieldError {
	var out []*FieldError
	for _, f := range step.Fields {
		if err := CheckField(f, a[f.FieldKey]); err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				out = append(out, fe)
			}
		}
	}
	return out
}

// Check validates all answers of cfg and joins the field errors in step
// order.
func Check(cfg *registry.ProcedureConfig, a Answers) error {
	var errs []error
	for _, s := range cfg.Steps {
		for _, fe := range CheckStep(s, a) {
			errs = append(errs, fe)
		}
	}
	return errors.Join(errs...)
}
