package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version is stamped into export metadata as app_version. Importing a file
// produced by a different version is allowed; the field exists so future
// schema changes can be detected.
const Version = "0.3.0"

type Config struct {
	DataPath  string `yaml:"data_path"`
	DBPath    string `yaml:"db_path"`
	NotesPath string `yaml:"notes_path"`
	CoachPath string `yaml:"coach_path"`
}

// New derives a config rooted at dataPath, overlaying prax.yaml from that
// directory when present. File values win over derived defaults.
func New(dataPath string) (Config, error) {
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	cfg := Config{
		DataPath:  dataPath,
		DBPath:    filepath.Join(dataPath, "prax.db"),
		NotesPath: filepath.Join(dataPath, "notes"),
		CoachPath: filepath.Join(dataPath, "coach"),
	}
	raw, err := os.ReadFile(filepath.Join(dataPath, "prax.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DataPath == "" {
		cfg.DataPath = dataPath
	}
	return cfg, nil
}
