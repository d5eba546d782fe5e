package service

import (
	"fmt"
	"os"

	"github.com/okian/platefinder/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// LoadSeed reads restaurant definitions from a YAML file.
func LoadSeed(path string) ([]model.Restaurant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var restaurants []model.Restaurant
	if err := yaml.Unmarshal(data, &restaurants); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return restaurants, nil
}
