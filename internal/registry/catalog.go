package registry

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

const (
	catalogDir = "catalog"
	lockFile   = "published.yaml"
)

// Catalog returns the embedded catalog directory.
func Catalog() fs.FS {
	sub, err := fs.Sub(catalogFS, catalogDir)
	if err != nil {
		panic(err)
	}
	return sub
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry built from the embedded catalog. It is built
// on first use and never modified afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := LoadDir(Catalog(), ".")
		if err != nil {
			panic(fmt.Sprintf("embedded procedure catalog is invalid: %v", err))
		}
		defaultReg = reg
	})
	return defaultReg
}

// GetProcedureConfig looks up a variant in the default registry.
func GetProcedureConfig(code, version string) *ProcedureConfig {
	return Default().ProcedureConfig(code, version)
}

// GetAllProcedures lists the active variants of the default registry.
func GetAllProcedures() []ProcedureMeta { return Default().AllProcedures() }

// GetProcedureSteps returns the ordered steps of a variant in the default registry.
func GetProcedureSteps(code, version string) []StepDefinition {
	return Default().Steps(code, version)
}

// GetProcedureMapping returns the mapping document of a variant in the default registry.
func GetProcedureMapping(code, version string) *ProcedureMapping {
	return Default().Mapping(code, version)
}

// GetProcedureHints returns the hints document of a variant in the default registry.
func GetProcedureHints(code, version string) *ProcedureHints {
	return Default().Hints(code, version)
}

// GetFieldMapping returns a field's mapping entry in the default registry.
func GetFieldMapping(code, version, fieldKey string) *FieldMapping {
	return Default().FieldMapping(code, version, fieldKey)
}

// GetFieldHint returns a field's hint in the default registry.
func GetFieldHint(code, version, fieldKey string) *FieldHint {
	return Default().FieldHint(code, version, fieldKey)
}

// Lock records the digest of every published variant document, keyed by
// "CODE/version".
type Lock struct {
	Published map[string]string `yaml:"published"`
}

// ReadLock reads the lock file from dir. A missing lock file yields an empty
// lock.
func ReadLock(fsys fs.FS, dir string) (*Lock, error) {
	data, err := fs.ReadFile(fsys, path.Join(dir, lockFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Lock{Published: map[string]string{}}, nil
		}
		return nil, err
	}
	var l Lock
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%s: %w", lockFile, err)
	}
	if l.Published == nil {
		l.Published = map[string]string{}
	}
	return &l, nil
}

// Digest returns the hex SHA-256 of a variant document.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyPublished checks that no published variant in dir was changed or
// removed. Changing a published variant requires a new version.
func VerifyPublished(fsys fs.FS, dir string) IssueList {
	lock, err := ReadLock(fsys, dir)
	if err != nil {
		return IssueList{{Severity: SeverityError, Message: err.Error()}}
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return IssueList{{Severity: SeverityError, Message: err.Error()}}
	}
	seen := make(map[string]bool)
	var issues IssueList
	for _, e := range entries {
		if e.IsDir() || !isVariantFile(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Message: err.Error()})
			continue
		}
		var doc struct {
			Meta ProcedureMeta `yaml:"meta"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Message: fmt.Sprintf("%s: %v", e.Name(), err)})
			continue
		}
		key := doc.Meta.Key()
		want, published := lock.Published[key.String()]
		if !published {
			continue
		}
		seen[key.String()] = true
		if got := Digest(data); got != want {
			issues = append(issues, Issue{
				Key:      key,
				Severity: SeverityError,
				Message:  fmt.Sprintf("published variant changed (digest %s, locked %s); publish a new version instead", short(got), short(want)),
			})
		}
	}
	var missing []string
	for k := range lock.Published {
		if !seen[k] {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	for _, k := range missing {
		issues = append(issues, Issue{Severity: SeverityError, Message: fmt.Sprintf("published variant %s was removed", k)})
	}
	return issues
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
