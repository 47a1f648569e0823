package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv may hold the API key when the config file leaves it blank.
const APIKeyEnv = "OPENWEATHER_API_KEY"

type Configuration struct {
	APIKey string `yaml:"API_KEY" validate:"required"`
	City   string `yaml:"CITY" validate:"required"`
}

// ConfigurationError reports a config file that cannot be used. Key is set
// when a required key is missing.
type ConfigurationError struct {
	Path string
	Key  string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("missing required configuration key: %s", e.Key)
	}
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads the JSON or YAML document at path.
func Load(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, &ConfigurationError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Configuration{}, &ConfigurationError{Path: path, Err: fmt.Errorf("failed to parse config file: %w", err)}
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.City = strings.TrimSpace(cfg.City)

	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	}

	if err := cfg.Validate(); err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return Configuration{}, err
	}

	return cfg, nil
}

// Validate checks that every required key is set.
func (c Configuration) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ConfigurationError{Key: fieldErrs[0].Field(), Err: err}
	}
	return &ConfigurationError{Err: err}
}
