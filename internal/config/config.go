// Package config reads the optional per-project .phpenvx.yaml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".phpenvx.yaml"

type Config struct {
	SrcDir    string   `yaml:"src_dir"`
	ResultDir string   `yaml:"result_dir"`
	Extension string   `yaml:"extension"`
	Exclude   []string `yaml:"exclude"`
}

func Default() Config {
	return Config{
		SrcDir:    "src",
		ResultDir: "result",
		Extension: ".inc",
	}
}

// Load returns the project config from dir, falling back to defaults for
// fields the file leaves unset. A missing file is not an error; an invalid
// one is.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", ConfigFileName, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.SrcDir == "" {
		c.SrcDir = def.SrcDir
	}
	if c.ResultDir == "" {
		c.ResultDir = def.ResultDir
	}
	if c.Extension == "" {
		c.Extension = def.Extension
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
}
