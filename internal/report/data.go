package report

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pdp-recon/internal/config"
	"pdp-recon/internal/model"
)

// JSONExporter writes the summary as indented JSON
type JSONExporter struct{}

// NewJSONExporter creates a new JSONExporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export writes <file_name>.json
func (e *JSONExporter) Export(summary *model.Summary, cfg *config.Config) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	if err := os.WriteFile(cfg.GetOutputPath("json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}

// YAMLExporter writes the summary as YAML
type YAMLExporter struct{}

// NewYAMLExporter creates a new YAMLExporter
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

// Export writes <file_name>.yaml
func (e *YAMLExporter) Export(summary *model.Summary, cfg *config.Config) error {
	f, err := os.Create(cfg.GetOutputPath("yaml"))
	if err != nil {
		return fmt.Errorf("failed to create YAML report: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return enc.Close()
}
