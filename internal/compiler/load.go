package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is the encoding of a graph description file.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatOf infers the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported graph description %q: want .cue, .yaml, .yml or .hcl", path)
	}
}

// Parse decodes src in the given format.
func Parse(format Format, filename string, src []byte) (*GraphSpec, error) {
	switch format {
	case FormatCUE:
		return ParseCUE(filename, src)
	case FormatYAML:
		return ParseYAML(src)
	case FormatHCL:
		return ParseHCL(filename, src)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// LoadFile reads and decodes the graph description at path.
func LoadFile(path string) (*GraphSpec, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph description: %w", err)
	}
	return Parse(format, path, src)
}
