package gapi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CustomField replaces one generated field declaration with caller text.
type CustomField struct {
	ClassName string `yaml:"class_name"`
	FieldName string `yaml:"field_name"`
	NewField  string `yaml:"new_field"`
}

// CustomSerializer injects a serializer method for a field. An empty
// ClassName broadcasts the serializer to every class containing the field.
type CustomSerializer struct {
	ClassName      string `yaml:"class_name,omitempty"`
	FieldName      string `yaml:"field_name"`
	SerializerCode string `yaml:"serializer_code"`
}

// Customizations is the ordered set of textual edits layered onto
// generated model source.
type Customizations struct {
	CustomFields      []CustomField      `yaml:"custom_fields,omitempty"`
	CustomSerializers []CustomSerializer `yaml:"custom_serializers,omitempty"`
	CustomImports     []string           `yaml:"custom_imports,omitempty"`
}

// ParseCustomizations parses a YAML customization document.
func ParseCustomizations(data []byte) (*Customizations, error) {
	var c Customizations

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing customizations: %w", err)
	}

	return &c, nil
}

// LoadCustomizationsFile loads a YAML customization file from disk.
func LoadCustomizationsFile(path string) (*Customizations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading customizations file %s: %w", path, err)
	}

	return ParseCustomizations(data)
}
