// Where: internal/config/presets.go
// What: Named prompt preset load/validate helpers.
// Why: Let users keep reusable system/analysis prompt pairs in prompts.yaml.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// DefaultPresetsFile is the presets file looked up in the working directory.
const DefaultPresetsFile = "prompts.yaml"

//go:embed presets.schema.json
var presetsSchema string

var (
	presetSchemaOnce sync.Once
	presetSchemaErr  error
	compiledPresets  *jsonschema.Schema
)

// PromptPreset is a named system/analysis prompt pair.
type PromptPreset struct {
	Name   string `yaml:"name" json:"name"`
	System string `yaml:"system,omitempty" json:"system,omitempty"`
	Prompt string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
}

// Presets is the parsed prompts.yaml document.
type Presets struct {
	Version int            `yaml:"version" json:"version"`
	Default string         `yaml:"default,omitempty" json:"default,omitempty"`
	Presets []PromptPreset `yaml:"presets" json:"presets"`
}

// BuiltinPresets returns the presets compiled into the binary. They are used
// whenever no prompts.yaml exists.
func BuiltinPresets() Presets {
	return Presets{
		Version: 1,
		Default: "general",
		Presets: []PromptPreset{
			{
				Name:   "general",
				System: "You are an expert image analyst. Provide detailed, accurate descriptions of images. Be thorough but concise in your analysis.",
				Prompt: "Analyze this image and provide a detailed description. Include information about objects, people, setting, colors, mood, and any text visible in the image.",
			},
			{
				Name:   "ocr",
				System: "You are a transcription assistant. Extract text exactly as written, preserving line breaks.",
				Prompt: "Extract all text visible in this image. Output only the text itself.",
			},
		},
	}
}

// LoadPresets reads and validates a prompts.yaml file. A missing file is not
// an error; the builtin presets are returned instead.
func LoadPresets(path string) (Presets, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPresetsFile
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BuiltinPresets(), nil
		}
		return Presets{}, fmt.Errorf("read presets %s: %w", path, err)
	}

	if err := validatePresets(payload); err != nil {
		return Presets{}, fmt.Errorf("invalid presets %s: %w", path, err)
	}

	var presets Presets
	if err := yaml.Unmarshal(payload, &presets); err != nil {
		return Presets{}, fmt.Errorf("parse presets %s: %w", path, err)
	}

	seen := map[string]bool{}
	for _, preset := range presets.Presets {
		if seen[preset.Name] {
			return Presets{}, fmt.Errorf("invalid presets %s: duplicate preset %q", path, preset.Name)
		}
		seen[preset.Name] = true
	}
	if presets.Default != "" && !seen[presets.Default] {
		return Presets{}, fmt.Errorf("invalid presets %s: default preset %q is not defined", path, presets.Default)
	}
	return presets, nil
}

// Find returns the preset with the given name. An empty name selects the
// document's default preset, falling back to the first entry.
func (p Presets) Find(name string) (PromptPreset, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = p.Default
	}
	if name == "" && len(p.Presets) > 0 {
		return p.Presets[0], true
	}
	for _, preset := range p.Presets {
		if preset.Name == name {
			return preset, true
		}
	}
	return PromptPreset{}, false
}

// Names returns preset names in declared order, for completion and UI lists.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p.Presets))
	for _, preset := range p.Presets {
		names = append(names, preset.Name)
	}
	return names
}

func validatePresets(content []byte) error {
	sch, err := loadPresetsSchema()
	if err != nil {
		return err
	}
	jsonData, err := sigsyaml.YAMLToJSON(content)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}
	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}
	return sch.Validate(document)
}

func loadPresetsSchema() (*jsonschema.Schema, error) {
	presetSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("presets.schema.json", strings.NewReader(presetsSchema)); err != nil {
			presetSchemaErr = err
			return
		}
		compiledPresets, presetSchemaErr = compiler.Compile("presets.schema.json")
	})
	return compiledPresets, presetSchemaErr
}
