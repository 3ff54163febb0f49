package registry

import (
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad ensures a variant file on disk is parsed.
func TestLoad(t *testing.T) {
	cfg, err := Load("catalog/iza_v1.yaml")
	if err != nil {
		t.Fatalf("failed to load variant: %v", err)
	}
	if cfg.Meta.Code != "IZA" || cfg.Meta.Version != "v1" {
		t.Fatalf("unexpected identity %s", cfg.Key())
	}
}

func TestDefaultLookupMatchesKey(t *testing.T) {
	reg := Default()
	require.NotEmpty(t, reg.Keys())
	for _, k := range reg.Keys() {
		cfg := reg.ProcedureConfig(k.Code, k.Version)
		require.NotNil(t, cfg, k.String())
		assert.Equal(t, k.Code, cfg.Meta.Code)
		assert.Equal(t, k.Version, cfg.Meta.Version)
	}
}

func TestFieldKeysUniquePerVariant(t *testing.T) {
	reg := Default()
	for _, k := range reg.Keys() {
		seen := map[string]bool{}
		for _, f := range reg.ProcedureConfig(k.Code, k.Version).Fields() {
			assert.False(t, seen[f.FieldKey], "%s collects %s twice", k, f.FieldKey)
			seen[f.FieldKey] = true
		}
	}
}

func TestMappingKeysUniqueAndLabelled(t *testing.T) {
	reg := Default()
	for _, k := range reg.Keys() {
		cfg := reg.ProcedureConfig(k.Code, k.Version)
		seen := map[string]bool{}
		for _, m := range cfg.Mapping.Mappings {
			assert.False(t, seen[m.FieldKey], "%s maps %s twice", k, m.FieldKey)
			seen[m.FieldKey] = true
		}
		for _, f := range cfg.Fields() {
			m := reg.FieldMapping(k.Code, k.Version, f.FieldKey)
			if m == nil {
				continue
			}
			assert.NotEmpty(t, strings.TrimSpace(m.Label), "%s %s has a blank label", k, f.FieldKey)
		}
	}
}

func TestAllProceduresExcludesInactive(t *testing.T) {
	metas := GetAllProcedures()
	require.NotEmpty(t, metas)
	for _, m := range metas {
		assert.True(t, m.IsActive, m.Key().String())
		assert.NotEqual(t, "IAA", m.Code)
	}
	assert.NotNil(t, GetProcedureConfig("IAA", "v1"), "inactive variants stay addressable")
}

func TestIZAv1(t *testing.T) {
	cfg := GetProcedureConfig("IZA", "v1")
	require.NotNil(t, cfg)

	var stepKeys []string
	fields := map[string]bool{}
	for _, s := range cfg.Steps {
		stepKeys = append(stepKeys, s.StepKey)
		for _, f := range s.Fields {
			fields[f.FieldKey] = true
		}
	}
	if diff := cmp.Diff([]string{"package", "sender", "recipient", "additional"}, stepKeys); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, fields, 10)

	m := GetFieldMapping("IZA", "v1", "origin_country")
	require.NotNil(t, m)
	want := FieldMapping{
		FieldKey:    "origin_country",
		Label:       "Herkunftsland",
		TargetForm:  "IZA – Angaben zur Sendung",
		TargetField: `Feld „Ursprungsland"`,
	}
	if diff := cmp.Diff(want, *m); diff != "" {
		t.Errorf("origin_country mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownLookupsReturnNil(t *testing.T) {
	assert.Nil(t, GetProcedureConfig("UNKNOWN", "v1"))
	assert.Nil(t, GetProcedureSteps("UNKNOWN", "v1"))
	assert.Nil(t, GetProcedureMapping("UNKNOWN", "v1"))
	assert.Nil(t, GetProcedureHints("UNKNOWN", "v1"))
	assert.Nil(t, GetFieldMapping("UNKNOWN", "v1", "origin_country"))
	assert.Nil(t, GetFieldHint("UNKNOWN", "v1", "origin_country"))
	assert.Nil(t, GetFieldMapping("IZA", "v1", "no_such_field"))
	assert.Nil(t, GetFieldHint("IZA", "v1", "no_such_field"))
	assert.Nil(t, Default().Latest("UNKNOWN"))
}

func TestFieldMappingNilIffAbsent(t *testing.T) {
	reg := Default()
	for _, k := range reg.Keys() {
		cfg := reg.ProcedureConfig(k.Code, k.Version)
		mapped := map[string]bool{}
		for _, m := range cfg.Mapping.Mappings {
			mapped[m.FieldKey] = true
		}
		for _, f := range cfg.Fields() {
			got := reg.FieldMapping(k.Code, k.Version, f.FieldKey)
			assert.Equal(t, mapped[f.FieldKey], got != nil, "%s %s", k, f.FieldKey)
			if got != nil {
				assert.Equal(t, f.FieldKey, got.FieldKey)
			}
		}
	}
}

func TestDefaultWarnsAboutInternalFields(t *testing.T) {
	var fields []string
	for _, i := range Default().Issues() {
		assert.Equal(t, SeverityWarning, i.Severity)
		fields = append(fields, i.Key.String()+" "+i.FieldKey)
	}
	assert.Equal(t, []string{"IPK/v1 internal_reference"}, fields)
}

func TestReturnedConfigsAreCopies(t *testing.T) {
	cfg := GetProcedureConfig("IZA", "v1")
	require.NotNil(t, cfg)
	cfg.Meta.Name = "changed"
	cfg.Steps[0].Fields[0].FieldKey = "changed"
	cfg.Mapping.Mappings[0].Label = ""

	fresh := GetProcedureConfig("IZA", "v1")
	assert.Equal(t, "Internet-Zollanmeldung", fresh.Meta.Name)
	assert.Equal(t, "contents_description", fresh.Steps[0].Fields[0].FieldKey)
	assert.NotEmpty(t, fresh.Mapping.Mappings[0].Label)
}

const variantTemplate = `meta:
  code: TST
  version: %s
  name: Test
  targetAudience: BOTH
  isActive: %s
steps:
  - stepKey: second
    title: Second
    order: 2
    fields:
      - fieldKey: b
        fieldType: TEXT
        order: 1
  - stepKey: first
    title: First
    order: 1
    fields:
      - fieldKey: a2
        fieldType: NUMBER
        order: 2
      - fieldKey: a1
        fieldType: BOOLEAN
        order: 1
mapping:
  mappings:
    - fieldKey: a1
      label: A one
      targetForm: Form
      targetField: Box 1
hints:
  hints: []
`

func variant(version, active string) string {
	return fmt.Sprintf(variantTemplate, version, active)
}

func TestLoadDirOrdersStepsAndFields(t *testing.T) {
	fsys := fstest.MapFS{
		"cat/tst_v1.yaml": {Data: []byte(variant("v1", "true"))},
	}
	reg, err := LoadDir(fsys, "cat")
	require.NoError(t, err)

	steps := reg.Steps("TST", "v1")
	require.Len(t, steps, 2)
	assert.Equal(t, "first", steps[0].StepKey)
	assert.Equal(t, "a1", steps[0].Fields[0].FieldKey)
	assert.Equal(t, "a2", steps[0].Fields[1].FieldKey)
	assert.Equal(t, "second", steps[1].StepKey)
}

func TestLatestUsesSemanticOrdering(t *testing.T) {
	fsys := fstest.MapFS{
		"tst_v2.yaml":  {Data: []byte(variant("v2", "true"))},
		"tst_v10.yaml": {Data: []byte(variant("v10", "true"))},
		"tst_v11.yaml": {Data: []byte(variant("v11", "false"))},
	}
	reg, err := LoadDir(fsys, ".")
	require.NoError(t, err)

	latest := reg.Latest("TST")
	require.NotNil(t, latest)
	assert.Equal(t, "v10", latest.Meta.Version)
}

func TestNewRejectsDuplicateKey(t *testing.T) {
	a, err := Parse(strings.NewReader(variant("v1", "true")))
	require.NoError(t, err)
	b, err := Parse(strings.NewReader(variant("v1", "false")))
	require.NoError(t, err)

	_, err = New(a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TST/v1")
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown field type": strings.Replace(variant("v1", "true"), "fieldType: TEXT", "fieldType: DATE", 1),
		"unknown audience":   strings.Replace(variant("v1", "true"), "targetAudience: BOTH", "targetAudience: ANYONE", 1),
		"unexpected key":     variant("v1", "true") + "extra: 1\n",
		"missing steps":      "meta:\n  code: TST\n  version: v1\n  name: T\n  targetAudience: BOTH\n  isActive: true\nmapping:\n  mappings: []\nhints:\n  hints: []\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestNewRejectsInconsistentVariant(t *testing.T) {
	doc := strings.Replace(variant("v1", "true"), "fieldKey: a2", "fieldKey: b", 1)
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = New(cfg)
	require.Error(t, err)
	var issues IssueList
	require.ErrorAs(t, err, &issues)
	require.Len(t, issues, 1)
	assert.Equal(t, "b", issues[0].FieldKey)
}
