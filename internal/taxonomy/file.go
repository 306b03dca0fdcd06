package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.yaml.in/yaml/v3"
)

//go:embed schema.json
var fileSchema string

type fileDocument struct {
	Skills []Skill `yaml:"skills"`
}

// LoadFile reads a YAML skill table such as
//
//	skills:
//	  - name: Go
//	    aliases: [go, golang]
//
// The document is validated against the taxonomy schema before use.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file %q: %w", path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy file %q: %w", path, err)
	}

	return t, nil
}

// Parse decodes and validates a YAML skill table.
func Parse(data []byte) (*Taxonomy, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(fileSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("invalid taxonomy: %s", strings.Join(problems, "; "))
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}

	return New(doc.Skills)
}
