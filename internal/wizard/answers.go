package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/BlackOrder/zollpilot/internal/registry"
	yaml "gopkg.in/yaml.v3"
)

// Answers holds the values collected for a procedure variant, keyed by field
// key. A missing key means the field was left empty.
type Answers map[string]any

// FieldError reports a problem with the value of a single field.
type FieldError struct {
	FieldKey string
	Label    string
	Message  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Message)
}

func fieldError(f registry.FieldDefinition, format string, args ...any) *FieldError {
	return &FieldError{FieldKey: f.FieldKey, Label: f.DisplayLabel(), Message: fmt.Sprintf(format, args...)}
}

// LoadAnswers reads answers from the given YAML file path.
func LoadAnswers(path string) (Answers, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseAnswers(f)
}

// ParseAnswers decodes answers from YAML.
func ParseAnswers(r io.Reader) (Answers, error) {
	a := Answers{}
	if err := yaml.NewDecoder(r).Decode(&a); err != nil {
		if errors.Is(err, io.EOF) {
			return Answers{}, nil
		}
		return nil, err
	}
	return a, nil
}

// WriteAnswers encodes answers as YAML.
func WriteAnswers(w io.Writer, a Answers) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(a)); err != nil {
		return err
	}
	return enc.Close()
}

// Coerce converts raw text input into the typed value for the field. Empty
// input yields nil.
func Coerce(f registry.FieldDefinition, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	switch f.FieldType {
	case registry.FieldNumber:
		v, err := parseNumber(s)
		if err != nil {
			return nil, fieldError(f, "%q ist keine gültige Zahl", s)
		}
		return v, nil
	case registry.FieldBoolean:
		switch strings.ToLower(s) {
		case "ja", "j", "yes", "y", "true", "1", "x":
			return true, nil
		case "nein", "n", "no", "false", "0":
			return false, nil
		}
		return nil, fieldError(f, "bitte ja oder nein angeben")
	case registry.FieldCountry, registry.FieldCurrency:
		return strings.ToUpper(s), nil
	case registry.FieldSelect:
		for _, o := range f.Config.Options {
			if strings.EqualFold(o.Value, s) || strings.EqualFold(o.Label, s) {
				return o.Value, nil
			}
		}
		return nil, fieldError(f, "%q ist keine zulässige Auswahl", s)
	default:
		return s, nil
	}
}

// germanGrouping matches integers written with dots as thousands separators.
var germanGrouping = regexp.MustCompile(`^[+-]?[1-9][0-9]{0,2}(\.[0-9]{3})+$`)

// parseNumber accepts German ("1.234,50") and English ("1234.50") notation.
// Without a decimal comma, dots in front of groups of three digits are
// thousands separators, so "1.234" is 1234.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, " ", "")
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case germanGrouping.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	return strconv.ParseFloat(s, 64)
}

// toFloat converts decoded numeric values to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Normalize converts every answer of cfg to its typed value. Answers read from
// files may hold strings or integers where the field expects another type.
// Keys that are not fields of cfg are dropped.
func Normalize(cfg *registry.ProcedureConfig, a Answers) (Answers, error) {
	out := Answers{}
	var errs []error
	for _, f := range cfg.Fields() {
		v, ok := a[f.FieldKey]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if f.FieldType == registry.FieldText {
				out[f.FieldKey] = val
				continue
			}
			c, err := Coerce(f, val)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if c != nil {
				out[f.FieldKey] = c
			}
		default:
			if !isScalar(val) {
				out[f.FieldKey] = val
				continue
			}
			switch f.FieldType {
			case registry.FieldNumber:
				if n, ok := toFloat(val); ok {
					out[f.FieldKey] = n
					continue
				}
				out[f.FieldKey] = val
			case registry.FieldText:
				out[f.FieldKey] = fmt.Sprint(val)
			case registry.FieldCountry, registry.FieldCurrency, registry.FieldSelect:
				c, err := Coerce(f, fmt.Sprint(val))
				if err != nil {
					errs = append(errs, err)
					continue
				}
				out[f.FieldKey] = c
			default:
				out[f.FieldKey] = val
			}
		}
	}
	return out, errors.Join(errs...)
}

// isScalar reports whether v is a plain YAML scalar other than a string.
func isScalar(v any) bool {
	switch v.(type) {
	case bool, int, int64, uint64, float32, float64:
		return true
	}
	return false
}

// Defaults returns the configured default values of cfg. Boolean fields
// without a default start as false.
func Defaults(cfg *registry.ProcedureConfig) Answers {
	out := Answers{}
	for _, f := range cfg.Fields() {
		d := f.Config.Default
		switch {
		case d == nil && f.FieldType == registry.FieldBoolean:
			out[f.FieldKey] = false
		case d == nil:
		case f.FieldType == registry.FieldNumber:
			if n, ok := toFloat(d); ok {
				out[f.FieldKey] = n
			}
		default:
			out[f.FieldKey] = d
		}
	}
	return out
}

// InputValue renders a typed value as editable text for the field.
func InputValue(f registry.FieldDefinition, v any) string {
	if v == nil {
		return ""
	}
	if f.FieldType == registry.FieldNumber {
		if n, ok := toFloat(v); ok {
			return strings.Replace(strconv.FormatFloat(n, 'f', -1, 64), ".", ",", 1)
		}
	}
	return fmt.Sprint(v)
}
