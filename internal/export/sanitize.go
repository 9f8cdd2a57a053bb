package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// SanitizeName keeps letters, digits and a few punctuation marks, replaces
// anything else with '_', drops control characters and cuts to maxLen runes.
func SanitizeName(s string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r), strings.ContainsRune(" -_.,()", r):
			return r
		default:
			return '_'
		}
	}, s)
	cleaned = strings.TrimSpace(cleaned)

	if runes := []rune(cleaned); maxLen > 0 && len(runes) > maxLen {
		cleaned = strings.TrimSpace(string(runes[:maxLen]))
	}
	return cleaned
}

// ValidateOutputDir requires an existing, clean directory path without
// parent references.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("output directory is required")
	}
	if slices.Contains(strings.Split(filepath.ToSlash(dir), "/"), "..") {
		return errors.New("output directory cannot contain path traversal")
	}
	if filepath.Clean(dir) != dir {
		return errors.New("output directory must be a clean path")
	}

	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return errors.New("output directory does not exist")
	}
	if err != nil {
		return fmt.Errorf("invalid output directory: %w", err)
	}
	if !info.IsDir() {
		return errors.New("output directory is not a directory")
	}
	return nil
}

// WriteEDL validates dir and writes t there as <title>.edl.
func WriteEDL(dir string, t Timeline) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, t.Title+".edl")
	if err := os.WriteFile(path, []byte(GenerateEDL(t)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
