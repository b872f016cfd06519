package contract

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"apicontract/internal/core"
)

// catalogFile is the YAML layout of a scenario catalog:
//
//	scenarios:
//	  - name: post-by-id
//	    path: /posts/1
//	    expect:
//	      status: 200
//	      content_type: json
//	      fields:
//	        - {path: id, equals: 1}
//	        - {path: title, not_empty: true}
type catalogFile struct {
	Scenarios []scenarioSpec `yaml:"scenarios"`
}

type scenarioSpec struct {
	Name   string     `yaml:"name"`
	Method string     `yaml:"method"`
	Path   string     `yaml:"path"`
	Expect expectSpec `yaml:"expect"`
}

type expectSpec struct {
	Status      int         `yaml:"status"`
	ContentType string      `yaml:"content_type"`
	Body        *string     `yaml:"body"`
	Fields      []fieldSpec `yaml:"fields"`
}

type fieldSpec struct {
	Path     string  `yaml:"path"`
	Equals   any     `yaml:"equals"`
	Contains *string `yaml:"contains"`
	NotEmpty bool    `yaml:"not_empty"`
	Size     *int    `yaml:"size"`
	MinSize  *int    `yaml:"min_size"`
}

// LoadCatalog reads a YAML scenario catalog from path.
func LoadCatalog(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigError("failed to read catalog "+path, err)
	}
	scenarios, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return scenarios, nil
}

// ParseCatalog decodes a YAML scenario catalog.
func ParseCatalog(data []byte) ([]Scenario, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, core.NewConfigError("invalid catalog YAML", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, core.NewConfigError("catalog defines no scenarios", nil)
	}

	seen := make(map[string]struct{}, len(file.Scenarios))
	scenarios := make([]Scenario, 0, len(file.Scenarios))
	for i, spec := range file.Scenarios {
		s, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i, err)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, core.NewConfigError("duplicate scenario name "+s.Name, nil)
		}
		seen[s.Name] = struct{}{}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (spec scenarioSpec) build() (Scenario, error) {
	s := Scenario{
		Name:   strings.TrimSpace(spec.Name),
		Method: spec.Method,
		Path:   spec.Path,
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}

	if spec.Expect.Status != 0 {
		s.Expectations = append(s.Expectations, StatusCode(spec.Expect.Status))
	}
	switch ct := strings.TrimSpace(spec.Expect.ContentType); strings.ToLower(ct) {
	case "":
	case "json":
		s.Expectations = append(s.Expectations, ContentTypeJSON())
	default:
		s.Expectations = append(s.Expectations, ContentType(ct))
	}
	if spec.Expect.Body != nil {
		s.Expectations = append(s.Expectations, BodyEquals(*spec.Expect.Body))
	}
	for _, f := range spec.Expect.Fields {
		exp, err := f.build()
		if err != nil {
			return Scenario{}, fmt.Errorf("%s: %w", s.Name, err)
		}
		s.Expectations = append(s.Expectations, exp)
	}

	if len(s.Expectations) == 0 {
		return Scenario{}, core.NewConfigError(fmt.Sprintf("scenario %s has no expectations", s.Name), nil)
	}
	return s, nil
}

// build turns a field entry into its expectation. Exactly one predicate must be set.
func (f fieldSpec) build() (Expectation, error) {
	var built []Expectation
	if f.Equals != nil {
		want := f.Equals
		switch want.(type) {
		case int, int64, float64, string, bool:
		default:
			return nil, core.NewConfigError(fmt.Sprintf("field %q: unsupported equals value %v", f.Path, want), nil)
		}
		built = append(built, JSONEquals(f.Path, want))
	}
	if f.Contains != nil {
		built = append(built, JSONContains(f.Path, *f.Contains))
	}
	if f.NotEmpty {
		built = append(built, JSONNotEmpty(f.Path))
	}
	if f.Size != nil {
		built = append(built, ArraySize(f.Path, *f.Size))
	}
	if f.MinSize != nil {
		built = append(built, ArraySizeAtLeast(f.Path, *f.MinSize))
	}

	switch len(built) {
	case 0:
		return nil, core.NewConfigError(fmt.Sprintf("field %q: no predicate given", f.Path), nil)
	case 1:
		return built[0], nil
	default:
		return nil, core.NewConfigError(fmt.Sprintf("field %q: exactly one predicate per entry", f.Path), nil)
	}
}
