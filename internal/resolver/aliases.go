package resolver

import (
	"encoding/json"
	"fmt"
	"os"
)

// AliasEntry is the fallback mapping for one company identifier: alternate
// identifiers the site may use for the same company, known-good page URLs
// that bypass candidate construction entirely, and the marketplace API's
// numeric lender ID when the company has a recovery-updates feed.
type AliasEntry struct {
	AlternativeIDs []string `json:"alternative_ids"`
	DirectURLs     []string `json:"direct_urls"`
	LenderID       int      `json:"lender_id,omitempty"`
}

// AliasTable maps normalized company identifiers to their fallback entries.
type AliasTable map[string]AliasEntry

// LenderIDs extracts the identifier-to-lender-ID mapping for companies that
// have one.
func (t AliasTable) LenderIDs() map[string]int {
	ids := make(map[string]int)
	for identifier, entry := range t {
		if entry.LenderID > 0 {
			ids[identifier] = entry.LenderID
		}
	}
	return ids
}

// LoadAliasTable reads the alias table from a JSON file. If the main file is
// missing or corrupt it falls back to the sibling .bak file before giving up.
// A missing table is not an error; resolution works without one.
func LoadAliasTable(path string) (AliasTable, error) {
	if path == "" {
		return AliasTable{}, nil
	}

	table, err := readAliasFile(path)
	if err == nil {
		return table, nil
	}
	if os.IsNotExist(err) {
		if backup, bakErr := readAliasFile(path + ".bak"); bakErr == nil {
			return backup, nil
		}
		return AliasTable{}, nil
	}

	backup, bakErr := readAliasFile(path + ".bak")
	if bakErr == nil {
		return backup, nil
	}
	return nil, fmt.Errorf("load alias table: %w", err)
}

func readAliasFile(path string) (AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table AliasTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if table == nil {
		table = AliasTable{}
	}
	return table, nil
}
