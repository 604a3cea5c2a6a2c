package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/costlens/costlens-go/internal/domain/repository"
	"github.com/costlens/costlens-go/internal/shared/types"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ConfigRepositoryImpl implements ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository creates a new ConfigRepository implementation.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// LoadConfigFile loads a TOML, YAML or JSON configuration file, then
// layers COSTLENS_* environment variables on top. A .env file in the
// working directory is read first when present.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config

	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	applyEnvOverrides(&config)
	return &config, nil
}

// applyEnvOverrides lets environment variables win over file values.
func applyEnvOverrides(config *types.Config) {
	godotenv.Load()

	if v := os.Getenv("COSTLENS_PROFILES"); v != "" {
		config.Profiles = splitList(v)
	}
	if v := os.Getenv("COSTLENS_REPORT_NAME"); v != "" {
		config.ReportName = v
	}
	if v := os.Getenv("COSTLENS_DIR"); v != "" {
		config.Dir = v
	}
	if v := os.Getenv("COSTLENS_TIME_RANGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.TimeRange = n
		}
	}
	if v := os.Getenv("COSTLENS_HIERARCHY_TAG"); v != "" {
		config.HierarchyTag = v
	}
	if v := os.Getenv("COSTLENS_LOCALE"); v != "" {
		config.Locale = v
	}
	if v := os.Getenv("COSTLENS_CACHE_DIR"); v != "" {
		config.CacheDir = v
	}
	if v := os.Getenv("COSTLENS_LISTEN_ADDR"); v != "" {
		config.ListenAddr = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
