package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ToYAML serializes the model for review or later re-use by the
// splitting engine.
func (m *DataModel) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model: %w", err)
	}
	return data, nil
}

// Save writes the model as YAML to the given path.
func (m *DataModel) Save(path string) error {
	data, err := m.ToYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Load reads a model previously saved as YAML.
func Load(path string) (*DataModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var m DataModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}
	return &m, nil
}
