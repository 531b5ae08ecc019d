// Package plugin extends the tool catalogue at runtime. A manifest is a JSON
// file declaring one or more tools served by an external HTTP endpoint; the
// loader validates it, registers the declared tools, and forwards every call
// to the endpoint. A directory watcher keeps the catalogue in sync with the
// manifest files on disk.
package plugin

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// manifestNameRegex validates manifest names (lowercase alphanumeric with hyphens)
	manifestNameRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

	// semverRegex validates semver version format
	semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// Manifest declares a bundle of remote tools behind one HTTP endpoint.
type Manifest struct {
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Description    string            `json:"description,omitempty"`
	Endpoint       string            `json:"endpoint"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	Tools          []ToolManifest    `json:"tools"`
}

// ToolManifest declares one tool within a manifest.
type ToolManifest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Parameters  []ParameterManifest `json:"parameters,omitempty"`
}

// ParameterManifest declares one argument of a manifest tool.
type ParameterManifest struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Items       string      `json:"items,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// ManifestLoader loads and validates tool manifests.
type ManifestLoader struct {
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader
}

// NewManifestLoader creates a manifest loader.
func NewManifestLoader(logger zerolog.Logger) *ManifestLoader {
	return &ManifestLoader{
		logger:       logger.With().Str("component", "manifest-loader").Logger(),
		schemaLoader: gojsonschema.NewStringLoader(ManifestSchema),
	}
}

// LoadManifest loads and validates a manifest from a file.
func (m *ManifestLoader) LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	if err := m.validateSchema(data); err != nil {
		return nil, fmt.Errorf("manifest schema validation failed: %w", err)
	}

	if err := m.validateManifest(&manifest); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	m.logger.Debug().
		Str("name", manifest.Name).
		Str("version", manifest.Version).
		Int("tools", len(manifest.Tools)).
		Msg("Loaded manifest")

	return &manifest, nil
}

// validateSchema validates the raw manifest bytes against the JSON schema.
func (m *ManifestLoader) validateSchema(data []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(m.schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errMsg string
		for i, err := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += err.String()
		}
		return fmt.Errorf("schema validation errors: %s", errMsg)
	}

	return nil
}

// validateManifest performs the checks JSON Schema cannot express.
func (m *ManifestLoader) validateManifest(manifest *Manifest) error {
	if !manifestNameRegex.MatchString(manifest.Name) {
		return fmt.Errorf("invalid manifest name: %s (must be lowercase alphanumeric with hyphens)", manifest.Name)
	}

	if !semverRegex.MatchString(manifest.Version) {
		return fmt.Errorf("invalid version format: %s (must be semver: X.Y.Z)", manifest.Version)
	}

	endpoint, err := url.Parse(manifest.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return fmt.Errorf("endpoint must be an http or https URL, got %q", manifest.Endpoint)
	}

	seen := make(map[string]bool, len(manifest.Tools))
	for i, tool := range manifest.Tools {
		if seen[tool.Name] {
			return fmt.Errorf("tool %d: duplicate tool name %q within manifest", i, tool.Name)
		}
		seen[tool.Name] = true
	}

	return nil
}

// ParseManifest parses a manifest from JSON bytes without validating it.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}
	return &manifest, nil
}
