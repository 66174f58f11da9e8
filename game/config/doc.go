// Package config provides board preset management for the match-3 engine.
//
// The config package handles:
//   - Loading board presets from JSON or YAML files
//   - Preset validation
//   - Default preset management
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets are stored as .json, .yaml or .yml files in the presets directory.
// Each preset defines:
//   - Board dimensions (width, height)
//   - The tile alphabet, one character per tile value
//   - An optional fixed starting layout, one string per row
//   - An optional fixed refill sequence consumed before random values
//   - The random seed and an optional cascade pass limit
//
// Usage:
//
//	manager, err := config.NewManager("presets")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	preset, err := manager.LoadPreset("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	board, err := preset.NewBoard(logger)
package config
