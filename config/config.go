// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
	Model struct {
		Type  string `yaml:"type"`
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
	} `yaml:"model"`
	Database struct {
		Path    string `yaml:"path"`
		Enabled bool   `yaml:"enabled"`
	} `yaml:"database"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Validation struct {
		Strict bool `yaml:"strict"`
	} `yaml:"validation"`
	Report struct {
		Language string `yaml:"language"`
	} `yaml:"report"`
}

func Default() *Config {
	var c Config
	c.Http.Port = 8080
	c.Http.Timeout = 30 * time.Second
	c.Http.AllowedOrigins = []string{"*"}
	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Log.MaxSizeMB = 100
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	c.Log.Compress = true
	c.Model.Type = "adaboost"
	c.Model.Path = "best_model_adaboost.json"
	c.Database.Path = "data/predictions.db"
	c.Database.Enabled = true
	c.Cache.Size = 1024
	c.Validation.Strict = true
	c.Report.Language = "id"
	return &c
}

// Load decodes path over the defaults. When required is false a missing file
// is not an error.
func Load(path string, required bool) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return config, nil
		}
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return config, nil
}

// ApplyOverrides copies flag and environment values bound in v over the file
// values.
func ApplyOverrides(c *Config, v *viper.Viper) {
	if v == nil {
		return
	}
	if v.IsSet("http.port") {
		c.Http.Port = v.GetInt("http.port")
	}
	if v.IsSet("log.level") {
		c.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.format") {
		c.Log.Format = v.GetString("log.format")
	}
	if v.IsSet("model.type") {
		c.Model.Type = v.GetString("model.type")
	}
	if v.IsSet("model.path") {
		c.Model.Path = v.GetString("model.path")
	}
	if v.IsSet("model.watch") {
		c.Model.Watch = v.GetBool("model.watch")
	}
	if v.IsSet("database.path") {
		c.Database.Path = v.GetString("database.path")
	}
	if v.IsSet("validation.strict") {
		c.Validation.Strict = v.GetBool("validation.strict")
	}
	if v.IsSet("report.language") {
		c.Report.Language = v.GetString("report.language")
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.Http.Port))
	}
	if c.Model.Path == "" {
		errs = append(errs, errors.New("model.path is required"))
	}
	if c.Model.Type == "" {
		errs = append(errs, errors.New("model.type is required"))
	}
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required when database is enabled"))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, errors.New("cache.size must not be negative"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or console", c.Log.Format))
	}
	return errors.Join(errs...)
}
