package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"gopkg.in/yaml.v3"
)

// PresetFile is the YAML document read by cmd/seed.
type PresetFile struct {
	Presets map[string]Options `yaml:"presets"`
	Configs []ConfigPreset     `yaml:"configs"`
}

// ConfigPreset describes one config row. Value takes the same shapes the
// API accepts: a string for singular types, a list for multi types.
type ConfigPreset struct {
	Title       string            `yaml:"title"`
	Key         string            `yaml:"key"`
	Type        models.ConfigType `yaml:"type"`
	Description string            `yaml:"description"`
	Sort        int               `yaml:"sort"`
	Disabled    bool              `yaml:"disabled"`
	Value       any               `yaml:"value"`
}

// DefaultPresetYAML is used when no preset file is given.
const DefaultPresetYAML = `
presets:
  minimal:
    admins: 1
    users: 5
    wikis: 3
    categories: 2
    articlesPerCategory: 2
    commentsPerArticle: 1
    skipBcrypt: true
  demo:
    admins: 3
    users: 50
    wikis: 25
    categories: 6
    articlesPerCategory: 8
    commentsPerArticle: 4
    maxDays: 60
  large:
    admins: 5
    users: 1000
    wikis: 300
    categories: 20
    articlesPerCategory: 25
    commentsPerArticle: 10
    skipBcrypt: true
configs:
  - title: Site title
    key: site.title
    type: TEXT
    value: Wiki Admin
  - title: Site logo
    key: site.logo
    type: IMAGE
    value: /uploads/images/logo.png
  - title: Home banners
    key: home.banners
    type: MULTI_IMAGE
    value:
      - /uploads/images/banner-1.png
      - /uploads/images/banner-2.png
  - title: Footer links
    key: footer.links
    type: MULTI_TEXT
    value:
      - {title: About, content: About us, link: /about}
      - {title: Help, content: Help center, link: /help}
`

// ParsePresets decodes a preset document.
func ParsePresets(data []byte) (*PresetFile, error) {
	var file PresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for _, c := range file.Configs {
		if c.Key == "" || c.Title == "" {
			return nil, fmt.Errorf("parse presets: config entries need a key and a title")
		}
		if !c.Type.Valid() {
			return nil, fmt.Errorf("parse presets: config %s has unknown type %q", c.Key, c.Type)
		}
	}
	return &file, nil
}

// LoadPresets reads path, or the built-in presets when path is empty.
func LoadPresets(path string) (*PresetFile, error) {
	if path == "" {
		return ParsePresets([]byte(DefaultPresetYAML))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return ParsePresets(data)
}

// Lookup returns the named preset.
func (p *PresetFile) Lookup(name string) (Options, error) {
	opts, ok := p.Presets[name]
	if !ok {
		names := make([]string, 0, len(p.Presets))
		for n := range p.Presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Options{}, fmt.Errorf("unknown preset %q (available: %v)", name, names)
	}
	return opts, nil
}

// Model converts the preset into a config with its satellite rows, going
// through the same value decoder as the API.
func (c ConfigPreset) Model() (*models.Config, error) {
	var raw json.RawMessage
	if c.Value != nil {
		encoded, err := json.Marshal(c.Value)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", c.Key, err)
		}
		raw = encoded
	}
	value, err := service.DecodeValue(c.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", c.Key, err)
	}

	cfg := &models.Config{
		Title:       c.Title,
		Key:         c.Key,
		Type:        c.Type,
		Description: c.Description,
		Sort:        c.Sort,
		IsEnabled:   !c.Disabled,
	}
	switch c.Type {
	case models.ConfigTypeImage:
		cfg.ImageValue = &models.ConfigImageValue{URL: value.Text}
	case models.ConfigTypeMultiImage:
		cfg.MultiImageValues = value.Images
		for i := range cfg.MultiImageValues {
			cfg.MultiImageValues[i].Sort = i
		}
	case models.ConfigTypeMultiText:
		cfg.MultiTextValues = value.Texts
		for i := range cfg.MultiTextValues {
			cfg.MultiTextValues[i].Sort = i
		}
	case models.ConfigTypeMultiContent:
		cfg.MultiContentValues = value.Contents
		for i := range cfg.MultiContentValues {
			cfg.MultiContentValues[i].Sort = i
		}
	default:
		cfg.TextValue = &models.ConfigTextValue{Value: value.Text}
	}
	return cfg, nil
}
