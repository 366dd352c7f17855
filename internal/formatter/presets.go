package formatter

import "fmt"

// Preset represents a template preset with name, template string, and description.
type Preset struct {
	Name        string
	Template    string
	Description string
}

// PresetRegistry manages template presets.
type PresetRegistry interface {
	Get(name string) (*Preset, error)
	List() []Preset
	Register(preset Preset) error
}

type presetRegistry struct {
	presets map[string]Preset
	order   []string
}

// NewPresetRegistry creates a registry holding the default presets.
func NewPresetRegistry() PresetRegistry {
	registry := &presetRegistry{presets: make(map[string]Preset)}
	for _, p := range defaultPresets {
		_ = registry.Register(p)
	}
	return registry
}

var defaultPresets = []Preset{
	{
		Name:        "count-only",
		Template:    "{{unread-count}}",
		Description: "Only unread count",
	},
	{
		Name:        "compact",
		Template:    "[{{unread-count}}] {{latest-title}}",
		Description: "Unread count and latest title",
	},
	{
		Name:        "detailed",
		Template:    "{{unread-count}} unread, {{read-count}} read | Latest: {{latest-title}}",
		Description: "Counts and latest title",
	},
	{
		Name:        "connection",
		Template:    "{{connection-state}} ({{unread-count}})",
		Description: "Real-time connection state and unread count",
	},
}

// Get returns a preset by name, or an error if not found.
func (pr *presetRegistry) Get(name string) (*Preset, error) {
	preset, ok := pr.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset not found: %s", name)
	}
	return &preset, nil
}

// List returns all presets in registration order.
func (pr *presetRegistry) List() []Preset {
	result := make([]Preset, 0, len(pr.order))
	for _, name := range pr.order {
		result = append(result, pr.presets[name])
	}
	return result
}

// Register adds a new preset or overwrites an existing one.
func (pr *presetRegistry) Register(preset Preset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if preset.Template == "" {
		return fmt.Errorf("preset template cannot be empty")
	}
	if _, exists := pr.presets[preset.Name]; !exists {
		pr.order = append(pr.order, preset.Name)
	}
	pr.presets[preset.Name] = preset
	return nil
}
