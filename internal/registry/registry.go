package registry

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	yaml "gopkg.in/yaml.v3"
)

// Registry is a read-only catalog of procedure variants keyed by
// (code, version). It never changes after construction, so it is safe for
// concurrent use without locking.
type Registry struct {
	configs map[Key]*ProcedureConfig
	keys    []Key
	issues  IssueList
}

// Load reads a single variant document from the given YAML file path.
func Load(path string) (*ProcedureConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a variant document from an io.Reader. The document is
// checked against the procedure schema before decoding.
func Parse(r io.Reader) (*ProcedureConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(data); err != nil {
		return nil, err
	}
	var cfg ProcedureConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// New builds a registry from the given variants. It fails when two variants
// share a key or when any variant has error issues. Warnings are kept and
// available through Issues.
func New(configs ...*ProcedureConfig) (*Registry, error) {
	r := &Registry{configs: make(map[Key]*ProcedureConfig, len(configs))}
	var problems IssueList
	for _, c := range configs {
		if c == nil {
			continue
		}
		key := c.Key()
		if _, dup := r.configs[key]; dup {
			return nil, fmt.Errorf("duplicate procedure variant %s", key)
		}
		issues := Validate(c)
		problems = append(problems, issues.Errors()...)
		r.issues = append(r.issues, issues.Warnings()...)

		stored := c.Clone()
		sortSteps(stored.Steps)
		r.configs[key] = stored
		r.keys = append(r.keys, key)
	}
	if len(problems) > 0 {
		return nil, problems
	}
	sort.Slice(r.keys, func(i, j int) bool {
		if r.keys[i].Code != r.keys[j].Code {
			return r.keys[i].Code < r.keys[j].Code
		}
		return r.keys[i].Version < r.keys[j].Version
	})
	return r, nil
}

// LoadDir parses every *.yaml file in dir and builds a registry from them.
func LoadDir(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var configs []*ProcedureConfig
	for _, e := range entries {
		if e.IsDir() || !isVariantFile(e.Name()) {
			continue
		}
		f, err := fsys.Open(path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		cfg, err := Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		configs = append(configs, cfg)
	}
	return New(configs...)
}

func isVariantFile(name string) bool {
	return (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) && name != lockFile
}

// sortSteps orders steps and their fields by ascending order.
func sortSteps(steps []StepDefinition) {
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
	for i := range steps {
		fields := steps[i].Fields
		sort.SliceStable(fields, func(a, b int) bool { return fields[a].Order < fields[b].Order })
	}
}

// Issues returns the warnings recorded while building the registry.
func (r *Registry) Issues() IssueList {
	return append(IssueList(nil), r.issues...)
}

// Keys returns the identity of every variant, active or not, sorted by code
// and version.
func (r *Registry) Keys() []Key {
	return append([]Key(nil), r.keys...)
}

// ProcedureConfig returns a copy of the variant, or nil when it is unknown.
func (r *Registry) ProcedureConfig(code, version string) *ProcedureConfig {
	c, ok := r.configs[Key{Code: code, Version: version}]
	if !ok {
		return nil
	}
	return c.Clone()
}

// AllProcedures returns the metadata of every active variant.
func (r *Registry) AllProcedures() []ProcedureMeta {
	var out []ProcedureMeta
	for _, k := range r.keys {
		if m := r.configs[k].Meta; m.IsActive {
			out = append(out, m)
		}
	}
	return out
}

// Steps returns the ordered steps of a variant, or nil.
func (r *Registry) Steps(code, version string) []StepDefinition {
	c, ok := r.configs[Key{Code: code, Version: version}]
	if !ok {
		return nil
	}
	return cloneSteps(c.Steps)
}

// Mapping returns the mapping document of a variant, or nil.
func (r *Registry) Mapping(code, version string) *ProcedureMapping {
	c, ok := r.configs[Key{Code: code, Version: version}]
	if !ok {
		return nil
	}
	m := c.Mapping.clone()
	return &m
}

// Hints returns the hints document of a variant, or nil.
func (r *Registry) Hints(code, version string) *ProcedureHints {
	c, ok := r.configs[Key{Code: code, Version: version}]
	if !ok {
		return nil
	}
	h := c.Hints.clone()
	return &h
}

// FieldMapping returns the mapping entry of a field, or nil when the variant
// is unknown or the field is not shown on the paper form.
func (r *Registry) FieldMapping(code, version, fieldKey string) *FieldMapping {
	c, ok := r.configs[Key{Code: code, Version: version}]
	if !ok {
		return nil
	}
	return c.FieldMapping(fieldKey)
}

// FieldHint returns the hint of a field, or nil.
func (r *Registry) FieldHint(code, version, fieldKey string) *FieldHint {
	c, ok := r.configs[Key{Code: code, Version: version}]
	if !ok {
		return nil
	}
	return c.FieldHint(fieldKey)
}

// Latest returns the active variant of code with the highest version, or
// nil. Versions that do not parse as semantic versions are ignored.
func (r *Registry) Latest(code string) *ProcedureConfig {
	var (
		best    *ProcedureConfig
		bestVer *semver.Version
	)
	for _, k := range r.keys {
		c := r.configs[k]
		if k.Code != code || !c.Meta.IsActive {
			continue
		}
		v, err := semver.NewVersion(k.Version)
		if err != nil {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = c, v
		}
	}
	return best.Clone()
}
