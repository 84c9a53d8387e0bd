package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadZoneSeeds reads default zone definitions from a YAML file.
func loadZoneSeeds(path string) ([]zoneSeed, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read default zones: %w", err)
	}

	var doc struct {
		Zones []zoneSeed `yaml:"zones"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse default zones: %w", err)
	}
	return doc.Zones, nil
}
