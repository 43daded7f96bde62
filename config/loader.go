package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
)

// ConfigFileName is the per-project extraction settings file LoadExtraction
// discovers.
const ConfigFileName = "docintel.yaml"

// LoadExtractionConfig reads an extraction configuration from a YAML file.
// Settings start from the defaults, so a file only needs to name what it
// changes.
func LoadExtractionConfig(path string) (*models.ExtractionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewIO(err, "cannot read config %s", path).WithContext("file", path)
	}

	cfg := models.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.NewInvalidConfig(err, "config error: cannot parse %s", path)
	}
	return cfg, nil
}

// DiscoverExtractionConfig walks from dir toward the filesystem root looking
// for a docintel.yaml. It returns defaults when no file exists.
func DiscoverExtractionConfig(dir string) (*models.ExtractionConfig, error) {
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return nil, errs.NewIO(err, "cannot determine working directory")
		}
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return LoadExtractionConfig(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return models.DefaultConfig(), nil
		}
		dir = parent
	}
}
