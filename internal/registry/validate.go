package registry

import (
	"fmt"
	"strings"
)

// Severity grades a validation issue.
type Severity int

const (
	// SeverityWarning marks data that is tolerated but worth flagging.
	SeverityWarning Severity = iota
	// SeverityError marks data that must not be published.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single finding about a procedure variant.
type Issue struct {
	Key      Key
	FieldKey string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	if i.FieldKey != "" {
		return fmt.Sprintf("%s %s [%s]: %s", i.Severity, i.Key, i.FieldKey, i.Message)
	}
	return fmt.Sprintf("%s %s: %s", i.Severity, i.Key, i.Message)
}

// IssueList is returned as an error when a variant has error issues.
type IssueList []Issue

func (l IssueList) Error() string {
	parts := make([]string, 0, len(l))
	for _, i := range l {
		parts = append(parts, i.String())
	}
	return strings.Join(parts, "; ")
}

// Errors returns only the issues with error severity.
func (l IssueList) Errors() IssueList {
	var out IssueList
	for _, i := range l {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns only the issues with warning severity.
func (l IssueList) Warnings() IssueList {
	var out IssueList
	for _, i := range l {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// Validate checks the referential consistency of one variant. Step fields
// without a mapping entry are reported as warnings because internal-only
// fields have no place on the paper form.
func Validate(cfg *ProcedureConfig) IssueList {
	if cfg == nil {
		return nil
	}
	key := cfg.Key()
	var issues IssueList
	errf := func(field, format string, args ...any) {
		issues = append(issues, Issue{Key: key, FieldKey: field, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(field, format string, args ...any) {
		issues = append(issues, Issue{Key: key, FieldKey: field, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Meta.Code == "" {
		errf("", "missing procedure code")
	}
	if cfg.Meta.Version == "" {
		errf("", "missing procedure version")
	}
	if cfg.Meta.Name == "" {
		errf("", "missing procedure name")
	}
	if !cfg.Meta.TargetAudience.Valid() {
		errf("", "unknown target audience %q", cfg.Meta.TargetAudience)
	}

	collected := make(map[string]bool)
	stepKeys := make(map[string]bool)
	stepOrders := make(map[int]string)
	for _, s := range cfg.Steps {
		if stepKeys[s.StepKey] {
			errf("", "duplicate step %q", s.StepKey)
		}
		stepKeys[s.StepKey] = true
		if other, ok := stepOrders[s.Order]; ok {
			errf("", "steps %q and %q share order %d", other, s.StepKey, s.Order)
		} else {
			stepOrders[s.Order] = s.StepKey
		}
		fieldOrders := make(map[int]string)
		for _, f := range s.Fields {
			if collected[f.FieldKey] {
				errf(f.FieldKey, "field collected more than once")
			}
			collected[f.FieldKey] = true
			if other, ok := fieldOrders[f.Order]; ok {
				errf(f.FieldKey, "shares order %d with %q in step %q", f.Order, other, s.StepKey)
			} else {
				fieldOrders[f.Order] = f.FieldKey
			}
			for _, msg := range checkFieldConfig(f) {
				errf(f.FieldKey, "%s", msg)
			}
		}
	}

	mapped := make(map[string]bool)
	for _, m := range cfg.Mapping.Mappings {
		if mapped[m.FieldKey] {
			errf(m.FieldKey, "duplicate mapping entry")
		}
		mapped[m.FieldKey] = true
		if !collected[m.FieldKey] {
			errf(m.FieldKey, "mapping refers to a field that is not collected")
		}
		if strings.TrimSpace(m.Label) == "" {
			errf(m.FieldKey, "mapping has an empty label")
		}
		if strings.TrimSpace(m.TargetForm) == "" || strings.TrimSpace(m.TargetField) == "" {
			errf(m.FieldKey, "mapping has no target form field")
		}
	}
	for _, f := range cfg.Fields() {
		if !mapped[f.FieldKey] {
			warnf(f.FieldKey, "field has no paper-form mapping")
		}
	}

	hinted := make(map[string]bool)
	for _, h := range cfg.Hints.Hints {
		if hinted[h.FieldKey] {
			errf(h.FieldKey, "duplicate hint")
		}
		hinted[h.FieldKey] = true
		if !collected[h.FieldKey] {
			warnf(h.FieldKey, "hint refers to a field that is not collected")
		}
	}
	return issues
}

func checkFieldConfig(f FieldDefinition) []string {
	var msgs []string
	if !f.FieldType.Valid() {
		msgs = append(msgs, fmt.Sprintf("unknown field type %q", f.FieldType))
	}
	c := f.Config
	if f.FieldType == FieldSelect && len(c.Options) == 0 {
		msgs = append(msgs, "select field without options")
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		msgs = append(msgs, fmt.Sprintf("min %g exceeds max %g", *c.Min, *c.Max))
	}
	if c.Step != nil && *c.Step <= 0 {
		msgs = append(msgs, "step must be positive")
	}
	if c.MaxLength != nil && *c.MaxLength <= 0 {
		msgs = append(msgs, "maxLength must be positive")
	}
	return msgs
}
