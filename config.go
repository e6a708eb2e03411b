package mutationtree

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var optionsValidator = validator.New()

// LoadTrackerOptions reads TrackerOptions from a YAML file and validates
// it, grounded on the teacher corpus's pairing of go-playground/validator
// struct tags with a gopkg.in/yaml.v3 loader for CLI-facing config.
func LoadTrackerOptions(path string) (TrackerOptions, error) {
	var opts TrackerOptions
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("mutationtree: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("mutationtree: parsing config %s: %w", path, err)
	}
	if err := optionsValidator.Struct(&opts); err != nil {
		return opts, fmt.Errorf("mutationtree: invalid config %s: %w", path, err)
	}
	return opts, nil
}
