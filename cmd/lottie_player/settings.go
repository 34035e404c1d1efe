package main

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// PlayerSettings are the preferences the player keeps between runs.
type PlayerSettings struct {
	Speed    float64 `yaml:"speed"`    // playback speed multiplier
	Loop     bool    `yaml:"loop"`     // loop at the end of the animation
	Scale    float64 `yaml:"scale"`    // on-screen scale factor
	LastFile string  `yaml:"lastFile"` // file to reopen when -file is omitted
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() *PlayerSettings {
	return &PlayerSettings{
		Speed: 1,
		Loop:  true,
		Scale: 1,
	}
}

// SettingsManager loads and saves player preferences.
// With a nil gdata manager it runs in memory only and Save is a no-op.
type SettingsManager struct {
	gdataManager *gdata.Manager
	settings     *PlayerSettings
}

const (
	settingsObject   = "player"
	settingsProperty = "preferences"
)

// NewSettingsManager builds a manager seeded with saved preferences.
// A load failure is not fatal; the defaults are used instead.
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[Settings] Warning: failed to load preferences: %v (using defaults)", err)
	}
	return sm
}

// Load reads preferences from storage.
// Missing storage or a missing entry leaves the defaults in place.
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	var loaded PlayerSettings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal preferences: %w", err)
	}

	// Zero values mean the field was missing from an older save.
	if loaded.Speed == 0 {
		loaded.Speed = 1
	}
	if loaded.Scale == 0 {
		loaded.Scale = 1
	}

	sm.settings = &loaded
	log.Printf("[Settings] Preferences loaded")
	return nil
}

// Save writes the current preferences to storage.
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	log.Printf("[Settings] Preferences saved")
	return nil
}

// Settings returns the live preferences instance.
func (sm *SettingsManager) Settings() *PlayerSettings {
	return sm.settings
}

// SetSpeed stores a new speed multiplier. Zero is ignored.
func (sm *SettingsManager) SetSpeed(speed float64) {
	if speed == 0 {
		return
	}
	sm.settings.Speed = speed
}

// SetLoop stores the loop preference.
func (sm *SettingsManager) SetLoop(loop bool) {
	sm.settings.Loop = loop
}

// SetScale stores the on-screen scale, clamped to a sane range.
func (sm *SettingsManager) SetScale(scale float64) {
	if scale < 0.25 {
		scale = 0.25
	}
	if scale > 4 {
		scale = 4
	}
	sm.settings.Scale = scale
}

// SetLastFile remembers the most recently opened animation.
func (sm *SettingsManager) SetLastFile(path string) {
	sm.settings.LastFile = path
}
