package wizard

import (
	"fmt"
	"math"

	"github.com/BlackOrder/zollpilot/internal/registry"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/message"
)

// FormEntry is one filled box of the official paper form.
type FormEntry struct {
	FieldKey    string
	Label       string
	TargetForm  string
	TargetField string
	Hint        string
	Value       string
}

// FormGroup collects the entries that belong to one paper form.
type FormGroup struct {
	Form    string
	Entries []FormEntry
}

var (
	germanPrinter = message.NewPrinter(language.German)
	regionNames   = display.Regions(language.German)
)

// FillForm lists where each answered, mapped field goes on the paper form,
// in step and field order. Fields without a mapping are internal and skipped.
func FillForm(cfg *registry.ProcedureConfig, a Answers) []FormEntry {
	var out []FormEntry
	for _, f := range cfg.Fields() {
		v, ok := a[f.FieldKey]
		if !ok || isEmpty(v) {
			continue
		}
		m := cfg.FieldMapping(f.FieldKey)
		if m == nil {
			continue
		}
		out = append(out, FormEntry{
			FieldKey:    f.FieldKey,
			Label:       m.Label,
			TargetForm:  m.TargetForm,
			TargetField: m.TargetField,
			Hint:        m.Hint,
			Value:       DisplayValue(f, v),
		})
	}
	return out
}

// GroupByForm groups entries by target form, keeping the order in which
// forms first appear.
func GroupByForm(entries []FormEntry) []FormGroup {
	var groups []FormGroup
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.TargetForm]
		if !ok {
			i = len(groups)
			index[e.TargetForm] = i
			groups = append(groups, FormGroup{Form: e.TargetForm})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// DisplayValue renders a typed value the way it is written on the German
// form.
func DisplayValue(f registry.FieldDefinition, v any) string {
	switch f.FieldType {
	case registry.FieldBoolean:
		if b, ok := v.(bool); ok {
			if b {
				return "Ja"
			}
			return "Nein"
		}
	case registry.FieldNumber:
		if n, ok := toFloat(v); ok {
			if n == math.Trunc(n) && math.Abs(n) < 1e15 {
				return germanPrinter.Sprintf("%d", int64(n))
			}
			return germanPrinter.Sprintf("%.2f", n)
		}
	case registry.FieldSelect:
		if s, ok := v.(string); ok {
			if label, found := f.OptionLabel(s); found && label != "" {
				return label
			}
		}
	case registry.FieldCountry:
		if s, ok := v.(string); ok {
			if r, err := language.ParseRegion(s); err == nil {
				if name := regionNames.Name(r); name != "" {
					return fmt.Sprintf("%s – %s", s, name)
				}
			}
		}
	}
	return fmt.Sprint(v)
}
