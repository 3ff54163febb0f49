package registry

import "fmt"

// Audience describes who a procedure is meant for.
type Audience string

// Supported audiences.
const (
	AudiencePrivate  Audience = "PRIVATE"
	AudienceBusiness Audience = "BUSINESS"
	AudienceBoth     Audience = "BOTH"
)

// Valid reports whether a is one of the known audiences.
func (a Audience) Valid() bool {
	switch a {
	case AudiencePrivate, AudienceBusiness, AudienceBoth:
		return true
	}
	return false
}

// FieldType identifies the kind of input a wizard field collects.
type FieldType string

// Supported field types.
const (
	FieldText     FieldType = "TEXT"
	FieldNumber   FieldType = "NUMBER"
	FieldSelect   FieldType = "SELECT"
	FieldCountry  FieldType = "COUNTRY"
	FieldCurrency FieldType = "CURRENCY"
	FieldBoolean  FieldType = "BOOLEAN"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldSelect, FieldCountry, FieldCurrency, FieldBoolean:
		return true
	}
	return false
}

// Key identifies one procedure variant.
type Key struct {
	Code    string
	Version string
}

func (k Key) String() string { return fmt.Sprintf("%s/%s", k.Code, k.Version) }

// ProcedureMeta describes a procedure variant.
type ProcedureMeta struct {
	Code             string   `yaml:"code"`
	Version          string   `yaml:"version"`
	Name             string   `yaml:"name"`
	ShortDescription string   `yaml:"shortDescription"`
	TargetAudience   Audience `yaml:"targetAudience"`
	IsActive         bool     `yaml:"isActive"`
}

// Key returns the identity of the variant.
func (m ProcedureMeta) Key() Key { return Key{Code: m.Code, Version: m.Version} }

// Option is one choice of a SELECT field.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// FieldConfig holds the presentation and constraint settings of a field.
// Every setting is optional.
type FieldConfig struct {
	Title       string   `yaml:"title,omitempty"`
	Label       string   `yaml:"label,omitempty"`
	Placeholder string   `yaml:"placeholder,omitempty"`
	Description string   `yaml:"description,omitempty"`
	MaxLength   *int     `yaml:"maxLength,omitempty"`
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	Step        *float64 `yaml:"step,omitempty"`
	Options     []Option `yaml:"options,omitempty"`
	Default     any      `yaml:"default,omitempty"`
}

// FieldDefinition defines a single input collected by the wizard.
type FieldDefinition struct {
	FieldKey  string      `yaml:"fieldKey"`
	FieldType FieldType   `yaml:"fieldType"`
	Required  bool        `yaml:"required"`
	Order     int         `yaml:"order"`
	Config    FieldConfig `yaml:"config"`
}

// DisplayLabel returns the label shown next to the input, falling back to
// the title and finally the field key.
func (f FieldDefinition) DisplayLabel() string {
	switch {
	case f.Config.Label != "":
		return f.Config.Label
	case f.Config.Title != "":
		return f.Config.Title
	}
	return f.FieldKey
}

// OptionLabel returns the label of the option with the given value.
func (f FieldDefinition) OptionLabel(value string) (string, bool) {
	for _, o := range f.Config.Options {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// StepDefinition is one page of the wizard.
type StepDefinition struct {
	StepKey     string            `yaml:"stepKey"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description,omitempty"`
	Order       int               `yaml:"order"`
	Fields      []FieldDefinition `yaml:"fields"`
}

// FieldMapping places a collected field on the official paper form.
type FieldMapping struct {
	FieldKey    string `yaml:"fieldKey"`
	Label       string `yaml:"label"`
	TargetForm  string `yaml:"targetForm"`
	TargetField string `yaml:"targetField"`
	Hint        string `yaml:"hint,omitempty"`
}

// ProcedureMapping is the mapping document of a variant.
type ProcedureMapping struct {
	Mappings []FieldMapping `yaml:"mappings"`
}

// FieldHint is contextual help text for a field.
type FieldHint struct {
	FieldKey    string `yaml:"fieldKey"`
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Explanation string `yaml:"explanation,omitempty"`
}

// ProcedureHints is the hints document of a variant.
type ProcedureHints struct {
	Hints []FieldHint `yaml:"hints"`
}

// ProcedureConfig bundles the four documents of one variant.
type ProcedureConfig struct {
	Meta    ProcedureMeta    `yaml:"meta"`
	Steps   []StepDefinition `yaml:"steps"`
	Mapping ProcedureMapping `yaml:"mapping"`
	Hints   ProcedureHints   `yaml:"hints"`
}

// Key returns the identity of the variant.
func (c *ProcedureConfig) Key() Key { return c.Meta.Key() }

// Fields returns every field of the variant in step order.
func (c *ProcedureConfig) Fields() []FieldDefinition {
	var out []FieldDefinition
	for _, s := range c.Steps {
		out = append(out, s.Fields...)
	}
	return out
}

// Field looks up a collected field by key.
func (c *ProcedureConfig) Field(fieldKey string) (FieldDefinition, bool) {
	for _, s := range c.Steps {
		for _, f := range s.Fields {
			if f.FieldKey == fieldKey {
				return f, true
			}
		}
	}
	return FieldDefinition{}, false
}

// FieldMapping returns the first mapping entry for fieldKey, or nil.
func (c *ProcedureConfig) FieldMapping(fieldKey string) *FieldMapping {
	for i := range c.Mapping.Mappings {
		if c.Mapping.Mappings[i].FieldKey == fieldKey {
			m := c.Mapping.Mappings[i]
			return &m
		}
	}
	return nil
}

// FieldHint returns the first hint for fieldKey, or nil.
func (c *ProcedureConfig) FieldHint(fieldKey string) *FieldHint {
	for i := range c.Hints.Hints {
		if c.Hints.Hints[i].FieldKey == fieldKey {
			h := c.Hints.Hints[i]
			return &h
		}
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c *ProcedureConfig) Clone() *ProcedureConfig {
	if c == nil {
		return nil
	}
	out := &ProcedureConfig{Meta: c.Meta}
	out.Steps = cloneSteps(c.Steps)
	out.Mapping = c.Mapping.clone()
	out.Hints = c.Hints.clone()
	return out
}

func cloneSteps(steps []StepDefinition) []StepDefinition {
	if steps == nil {
		return nil
	}
	out := make([]StepDefinition, len(steps))
	for i, s := range steps {
		out[i] = s
		out[i].Fields = make([]FieldDefinition, len(s.Fields))
		for j, f := range s.Fields {
			out[i].Fields[j] = f.clone()
		}
	}
	return out
}

func (f FieldDefinition) clone() FieldDefinition {
	out := f
	if f.Config.MaxLength != nil {
		v := *f.Config.MaxLength
		out.Config.MaxLength = &v
	}
	out.Config.Min = cloneFloat(f.Config.Min)
	out.Config.Max = cloneFloat(f.Config.Max)
	out.Config.Step = cloneFloat(f.Config.Step)
	if f.Config.Options != nil {
		out.Config.Options = append([]Option(nil), f.Config.Options...)
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (m ProcedureMapping) clone() ProcedureMapping {
	if m.Mappings == nil {
		return ProcedureMapping{}
	}
	return ProcedureMapping{Mappings: append([]FieldMapping(nil), m.Mappings...)}
}

func (h ProcedureHints) clone() ProcedureHints {
	if h.Hints == nil {
		return ProcedureHints{}
	}
	return ProcedureHints{Hints: append([]FieldHint(nil), h.Hints...)}
}
