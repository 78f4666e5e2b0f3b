// Package file provides JSON-file-backed store implementations. Every write
// goes to a temp file first and the previous version is kept as a .bak
// sibling, so a crash mid-write never loses the whole store.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// loadJSON reads path into v, falling back to path.bak when the main file is
// missing or corrupt. A missing store (no main file, no backup) is not an
// error; v is left untouched.
func loadJSON(path string, v any) error {
	if err := decodeFile(path, v); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		if bakErr := decodeFile(path+".bak", v); bakErr == nil {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := decodeFile(path+".bak", v); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load backup %s.bak: %w", path, err)
	}
	return nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// saveJSON writes v to path atomically, rotating the previous version to
// path.bak.
func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("rotate backup for %s: %w", path, err)
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
