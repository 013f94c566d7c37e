package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ProjectRoot string `json:"project_root" yaml:"project_root"`
	EnvFile     string `json:"env_file"     yaml:"env_file"`
	LogDir      string `json:"log_dir"      yaml:"log_dir"`
	LogToFile   bool   `json:"log_to_file"  yaml:"log_to_file"`
}

func Default() *Config {
	return &Config{
		ProjectRoot: ".",
		EnvFile:     ".env",
		LogDir:      "logs",
		LogToFile:   false,
	}
}

func (cfg *Config) validate() error {
	if cfg.ProjectRoot == "" {
		return errors.New("project root is empty")
	}

	if cfg.EnvFile == "" {
		return errors.New("env file path is empty")
	}

	if cfg.LogToFile && cfg.LogDir == "" {
		return errors.New("log dir is empty while logging to file is enabled")
	}

	return nil
}

// EnvFilePath resolves the env file relative to the project root unless it is
// already absolute.
func (cfg *Config) EnvFilePath() string {
	if filepath.IsAbs(cfg.EnvFile) {
		return cfg.EnvFile
	}
	return filepath.Join(cfg.ProjectRoot, cfg.EnvFile)
}

func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %v", filePath, err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return cfg, nil
}

func FromString(data string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(data), cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return cfg, nil
}
