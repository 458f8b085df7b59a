package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML graph description. Unknown keys are rejected.
func ParseYAML(src []byte) (*GraphSpec, error) {
	var spec GraphSpec
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty graph description")
		}
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &spec, nil
}
