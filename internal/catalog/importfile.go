package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a template file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported template file %q: use .json, .yaml or .toml", filepath.Base(path))
	}
}

// ReadTemplateFile loads a template definition for upload. Downloaded template
// files are accepted as-is; server-owned fields in them are ignored.
func ReadTemplateFile(path string) (*apiclient.TemplateInput, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}
	return DecodeTemplate(data, format)
}

// DecodeTemplate parses and validates a template definition.
func DecodeTemplate(data []byte, format Format) (*apiclient.TemplateInput, error) {
	var in apiclient.TemplateInput
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &in)
	case FormatYAML:
		err = yaml.Unmarshal(data, &in)
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).Decode(&in)
	default:
		return nil, fmt.Errorf("unsupported template format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", format, err)
	}

	if err := validator.New().Struct(&in); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return &in, nil
}
