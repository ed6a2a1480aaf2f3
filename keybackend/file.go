package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
)

// NamePair associates an object key with its display name.
type NamePair struct {
	Key  string `json:"key" mapstructure:"key" yaml:"key"`
	Name string `json:"name" mapstructure:"name" yaml:"name"`
}

// LoadNamesFromFile loads display names from a JSON file.
// The file should contain an array of pairs:
//
//	[
//	  {"key": "abc123.zip", "name": "song.zip"},
//	  {"key": "def456.pdf", "name": "report.pdf"}
//	]
//
// Returns a map of key to display name.
func LoadNamesFromFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read names file: %w", err)
	}

	var pairs []NamePair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parse names file: %w", err)
	}

	names := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.Key != "" && p.Name != "" {
			names[p.Key] = p.Name
		}
	}

	return names, nil
}
