package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidPreset  = errors.New("invalid preset")
)

// presetExtensions are tried in order when resolving a preset name
var presetExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles board preset loading and caching
type Manager struct {
	presetDir     string
	defaultPreset *Preset
	presets       map[string]*Preset
	mu            sync.RWMutex
}

// NewManager creates a new preset manager
func NewManager(presetDir string) (*Manager, error) {
	if _, err := os.Stat(presetDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("preset directory does not exist: %s", presetDir)
	}

	m := &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*Preset),
	}

	if err := m.loadDefaultPreset(); err != nil {
		return nil, fmt.Errorf("failed to load default preset: %w", err)
	}

	return m, nil
}

// Dir returns the directory presets are read from
func (m *Manager) Dir() string {
	return m.presetDir
}

// LoadPreset loads a preset by name, with or without its file extension
func (m *Manager) LoadPreset(name string) (*Preset, error) {
	if err := checkPresetName(name); err != nil {
		return nil, err
	}
	id := presetID(name)

	m.mu.RLock()
	if preset, exists := m.presets[id]; exists {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if preset, exists := m.presets[id]; exists {
		return preset, nil
	}

	preset, err := m.readPreset(name)
	if err != nil {
		return nil, err
	}

	m.presets[id] = preset
	return preset, nil
}

// readPreset finds and decodes the file for name
func (m *Manager) readPreset(name string) (*Preset, error) {
	candidates := []string{name}
	if !hasPresetExtension(name) {
		candidates = candidates[:0]
		for _, ext := range presetExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, filename := range candidates {
		data, err := os.ReadFile(filepath.Join(m.presetDir, filename))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read preset file: %w", err)
		}

		preset, err := DecodePreset(filename, data)
		if err != nil {
			return nil, err
		}
		return preset, nil
	}

	return nil, ErrPresetNotFound
}

// DecodePreset parses preset data, choosing JSON or YAML by the file extension,
// and validates the result.
func DecodePreset(filename string, data []byte) (*Preset, error) {
	var preset Preset
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &preset); err != nil {
			return nil, fmt.Errorf("failed to parse preset: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &preset); err != nil {
			return nil, fmt.Errorf("failed to parse preset: %w", err)
		}
	}

	if err := ValidatePreset(&preset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	return &preset, nil
}

// ListPresets returns information about all valid presets in the directory
func (m *Manager) ListPresets() ([]*PresetInfo, error) {
	entries, err := os.ReadDir(m.presetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	var presets []*PresetInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasPresetExtension(entry.Name()) {
			continue
		}

		id := presetID(entry.Name())
		if seen[id] {
			continue
		}

		preset, err := m.LoadPreset(entry.Name())
		if err != nil {
			// Skip invalid presets
			continue
		}
		seen[id] = true

		presets = append(presets, preset.Info(entry.Name(), id))
	}

	sort.Slice(presets, func(i, j int) bool {
		return presets[i].PresetID < presets[j].PresetID
	})

	return presets, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// SetDefault sets the default preset by name
func (m *Manager) SetDefault(name string) error {
	preset, err := m.LoadPreset(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = preset
	return nil
}

// RefreshCache drops all cached presets and reloads the default one
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.presets = make(map[string]*Preset)
	m.mu.Unlock()

	return m.loadDefaultPreset()
}

// SavePreset writes a preset to disk. A name ending in .yaml or .yml is written
// as YAML, anything else as JSON.
func (m *Manager) SavePreset(name string, preset *Preset) error {
	if err := checkPresetName(name); err != nil {
		return err
	}
	if err := ValidatePreset(preset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	filename := name
	if !hasPresetExtension(filename) {
		filename = name + ".json"
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(preset)
	default:
		data, err = json.MarshalIndent(preset, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.presetDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	m.mu.Lock()
	m.presets[presetID(filename)] = preset
	m.mu.Unlock()

	return nil
}

// loadDefaultPreset picks classic, else the first listed preset, else the built-in one
func (m *Manager) loadDefaultPreset() error {
	preset, err := m.LoadPreset("classic")
	if err != nil {
		presets, listErr := m.ListPresets()
		if listErr != nil || len(presets) == 0 {
			m.setDefault(DefaultPreset())
			return nil
		}

		preset, err = m.LoadPreset(presets[0].Filename)
		if err != nil {
			m.setDefault(DefaultPreset())
			return nil
		}
	}

	m.setDefault(preset)
	return nil
}

func (m *Manager) setDefault(p *Preset) {
	m.mu.Lock()
	m.defaultPreset = p
	m.mu.Unlock()
}

// checkPresetName rejects names that would resolve outside the preset directory
func checkPresetName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: preset name %q must be a plain file name", ErrInvalidPreset, name)
	}
	return nil
}

func hasPresetExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range presetExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// presetID strips a known preset extension from name
func presetID(name string) string {
	if hasPresetExtension(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
