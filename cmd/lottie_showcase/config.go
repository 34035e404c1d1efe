// cmd/lottie_showcase/config.go
// Showcase configuration: a YAML file (or a directory of YAML files)
// describing the grid and the animations it displays.

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/decker502/lottie/internal/sampledata"
)

// GlobalConfig holds grid-wide settings.
type GlobalConfig struct {
	TPS        int    `yaml:"tps"`         // game tick rate, default 60
	Columns    int    `yaml:"columns"`     // grid columns, default 4
	CellWidth  int    `yaml:"cell_width"`  // cell size in pixels, default 200
	CellHeight int    `yaml:"cell_height"` // default 200
	Background string `yaml:"background"`  // window background as #rrggbb
}

// AnimationEntry describes one showcase cell.
type AnimationEntry struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	File     string  `yaml:"file"`
	Loop     *bool   `yaml:"loop,omitempty"`     // nil means loop
	Speed    float64 `yaml:"speed,omitempty"`    // 0 means native speed
	Autoplay *bool   `yaml:"autoplay,omitempty"` // nil means autoplay

	// Embedded entries read File from the bundled sample set instead
	// of the filesystem.
	Embedded bool `yaml:"-"`
}

// ShowcaseConfig is the full configuration document.
type ShowcaseConfig struct {
	Global     GlobalConfig     `yaml:"global"`
	Animations []AnimationEntry `yaml:"animations"`
}

// Manager loads showcase configuration and indexes entries by id.
type Manager struct {
	config   *ShowcaseConfig
	entryMap map[string]*AnimationEntry
	mu       sync.RWMutex
}

// NewManager loads configuration from a YAML file, or merges every
// *.yaml file when the path is a directory. When the path does not
// exist the bundled sample animations are shown instead.
func NewManager(path string) (*Manager, error) {
	info, err := os.Stat(path)
	if err != nil {
		log.Printf("[Showcase] no config at %q, showing bundled samples", path)
		return builtinManager(), nil
	}

	var config *ShowcaseConfig
	if info.IsDir() {
		config, err = loadFromDirectory(path)
	} else {
		config, err = loadFromFile(path)
	}
	if err != nil {
		return nil, err
	}

	applyDefaults(config)

	entryMap := make(map[string]*AnimationEntry)
	for i := range config.Animations {
		entry := &config.Animations[i]
		if entry.ID == "" {
			return nil, fmt.Errorf("animation entry #%d is missing an 'id' field", i)
		}
		if entry.File == "" {
			return nil, fmt.Errorf("animation entry %q is missing a 'file' field", entry.ID)
		}
		if _, exists := entryMap[entry.ID]; exists {
			return nil, fmt.Errorf("duplicate animation id %q", entry.ID)
		}
		entryMap[entry.ID] = entry
	}

	return &Manager{config: config, entryMap: entryMap}, nil
}

// builtinManager exposes the bundled sample animations as a ready-made
// configuration.
func builtinManager() *Manager {
	config := &ShowcaseConfig{}
	for _, name := range sampledata.Names() {
		config.Animations = append(config.Animations, AnimationEntry{
			ID:       strings.TrimSuffix(name, ".json"),
			File:     name,
			Embedded: true,
		})
	}
	applyDefaults(config)

	entryMap := make(map[string]*AnimationEntry, len(config.Animations))
	for i := range config.Animations {
		entryMap[config.Animations[i].ID] = &config.Animations[i]
	}
	return &Manager{config: config, entryMap: entryMap}
}

// loadFromFile reads a single configuration document.
func loadFromFile(path string) (*ShowcaseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var config ShowcaseConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return &config, nil
}

// loadFromDirectory merges every YAML file in the directory: animation
// lists concatenate, global settings take the last non-zero value.
func loadFromDirectory(dir string) (*ShowcaseConfig, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan config directory %q: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no *.yaml files in config directory %q", dir)
	}
	sort.Strings(files)

	merged := &ShowcaseConfig{}
	for _, file := range files {
		part, err := loadFromFile(file)
		if err != nil {
			return nil, err
		}
		merged.Animations = append(merged.Animations, part.Animations...)
		mergeGlobal(&merged.Global, part.Global)
	}
	return merged, nil
}

func mergeGlobal(dst *GlobalConfig, src GlobalConfig) {
	if src.TPS != 0 {
		dst.TPS = src.TPS
	}
	if src.Columns != 0 {
		dst.Columns = src.Columns
	}
	if src.CellWidth != 0 {
		dst.CellWidth = src.CellWidth
	}
	if src.CellHeight != 0 {
		dst.CellHeight = src.CellHeight
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
}

func applyDefaults(config *ShowcaseConfig) {
	if config.Global.TPS == 0 {
		config.Global.TPS = 60
	}
	if config.Global.Columns == 0 {
		config.Global.Columns = 4
	}
	if config.Global.CellWidth == 0 {
		config.Global.CellWidth = 200
	}
	if config.Global.CellHeight == 0 {
		config.Global.CellHeight = 200
	}
	if config.Global.Background == "" {
		config.Global.Background = "#303030"
	}
	for i := range config.Animations {
		if config.Animations[i].Name == "" {
			config.Animations[i].Name = config.Animations[i].ID
		}
	}
}

// Global returns the grid-wide settings.
func (m *Manager) Global() GlobalConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Global
}

// Entries returns all animation entries in configuration order.
func (m *Manager) Entries() []AnimationEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]AnimationEntry(nil), m.config.Animations...)
}

// Entry returns the animation entry with the given id.
func (m *Manager) Entry(id string) (*AnimationEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entryMap[id]
	if !exists {
		return nil, fmt.Errorf("no animation entry %q", id)
	}
	return entry, nil
}
