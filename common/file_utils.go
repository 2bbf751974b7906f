package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, os.ModePerm)
	}

	return nil
}

func LoadJson[TReturn any](path string) (*TReturn, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %v. error: %w", path, err)
	}

	defer f.Close()

	var value TReturn

	if err := json.NewDecoder(f).Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode %v. error: %w", path, err)
	}

	return &value, nil
}

// LoadConfig loads (prefix)_config.json from configPath or from the
// directory of the executable. Missing fields get their `default` tag value
// and the result is checked against its `validate` tags.
func LoadConfig[TReturn any](configPath string, configPrefix string) (*TReturn, error) {
	if configPath == "" {
		ex, err := os.Executable()
		if err != nil {
			return nil, err
		}

		if strings.TrimSpace(configPrefix) != "" {
			configPath = path.Join(filepath.Dir(ex), strings.Join([]string{configPrefix, "config.json"}, "_"))
		} else {
			configPath = path.Join(filepath.Dir(ex), "config.json")
		}
	}

	config, err := LoadJson[TReturn](configPath)
	if err != nil {
		return nil, err
	}

	if err := ApplyDefaultsAndValidate(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return config, nil
}

func ApplyDefaultsAndValidate(config any) error {
	if err := defaults.Set(config); err != nil {
		return fmt.Errorf("failed to set defaults: %w", err)
	}

	return configValidator.Struct(config)
}
