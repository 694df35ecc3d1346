package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// loadSource parses the structured config file at path into a nested
// mapping. It never fails: a missing file yields an empty mapping silently,
// an unreadable or unparsable one yields an empty mapping and one warning.
func loadSource(path string, logger *slog.Logger) map[string]any {
	if path == "" {
		return map[string]any{}
	}

	if _, err := os.Stat(path); err != nil {
		logger.Debug("config file not found, using environment and defaults",
			slog.String("file", path))
		return map[string]any{}
	}

	values, err := parseFile(path)
	if err != nil {
		logger.Warn("could not load config file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return map[string]any{}
	}

	logger.Info("loaded config file", slog.String("file", path))

	if values == nil {
		return map[string]any{}
	}
	return values
}

// parseFile decodes path by extension. TOML and YAML keep the file's key
// case; the remaining formats viper supports go through viper, which folds
// keys to lower case. Unknown extensions are read as TOML.
func parseFile(path string) (map[string]any, error) {
	format := configFormat(path)

	switch format {
	case "toml", "yaml", "yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var values map[string]any
		if format == "toml" {
			err = toml.Unmarshal(data, &values)
		} else {
			err = yaml.Unmarshal(data, &values)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", format, err)
		}
		return values, nil
	default:
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType(format)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		return v.AllSettings(), nil
	}
}

func configFormat(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !slices.Contains(viper.SupportedExts, ext) {
		return "toml"
	}
	return ext
}
