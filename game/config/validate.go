package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ValidationResult captures the outcome of validating a single preset file.
// If Valid is true, Notes holds a short summary; otherwise it holds the
// problem that was found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

// ValidateFile reads, decodes and validates one preset file
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
		Notes: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	preset, err := DecodePreset(path, data)
	if err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, err.Error())
		return result
	}

	board, err := preset.NewBoard(nil)
	if err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, err.Error())
		return result
	}

	result.Notes = append(result.Notes, fmt.Sprintf("✓ Name: %s", preset.Name))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Board: %dx%d", preset.Width, preset.Height))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Tiles: %d", len(preset.Tiles)))
	// Runs in the starting layout are left alone until the first move
	if n := len(board.Matches()); n > 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("! Starting board already has %d match(es)", n))
	}

	return result
}

// ValidateDir validates every preset file in dir, sorted by file name
func ValidateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	var results []ValidationResult
	for _, entry := range entries {
		if entry.IsDir() || !hasPresetExtension(entry.Name()) {
			continue
		}
		results = append(results, ValidateFile(filepath.Join(dir, entry.Name())))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].File < results[j].File
	})
	return results, nil
}
