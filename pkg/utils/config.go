package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/vecmath/pkg/vecmath"
)

// Config represents the vecmath tool configuration
type Config struct {
	Math   MathConfig   `yaml:"math" mapstructure:"math"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Sample SampleConfig `yaml:"sample" mapstructure:"sample"`
}

// MathConfig contains defaults for vector operations
type MathConfig struct {
	Up      string  `yaml:"up" mapstructure:"up"`
	Epsilon float64 `yaml:"epsilon" mapstructure:"epsilon"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Port int  `yaml:"port" mapstructure:"port"`
	CORS bool `yaml:"cors" mapstructure:"cors"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SampleConfig contains frame sampling settings
type SampleConfig struct {
	Count int   `yaml:"count" mapstructure:"count"`
	Seed  int64 `yaml:"seed" mapstructure:"seed"`
}

const (
	configName = "config"
	envPrefix  = "VECMATH"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Math: MathConfig{
			Up:      "z",
			Epsilon: 1e-5,
		},
		Server: ServerConfig{
			Port: 8080,
			CORS: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Sample: SampleConfig{
			Count: 1000,
			Seed:  42,
		},
	}
}

// DefaultConfigDir returns $HOME/.vecmath
func DefaultConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".vecmath")
}

// LoadConfig loads configuration from cfgFile, or searches the default
// locations when cfgFile is empty. A missing config file yields the defaults.
// The returned string is the file that was read, if any.
func LoadConfig(cfgFile string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// Set environment variable prefix, e.g. VECMATH_SERVER_PORT
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}

	return &config, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("math.up", d.Math.Up)
	v.SetDefault("math.epsilon", d.Math.Epsilon)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors", d.Server.CORS)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("sample.count", d.Sample.Count)
	v.SetDefault("sample.seed", d.Sample.Seed)
}

// SaveConfig writes configuration to path as YAML
func SaveConfig(config *Config, path string) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if _, err := vecmath.ParseUpDirection(config.Math.Up); err != nil {
		return err
	}

	if config.Math.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if _, err := zerolog.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	if config.Sample.Count <= 0 {
		return fmt.Errorf("sample count must be positive")
	}

	return nil
}

// UpDirection returns the configured up axis
func (c *Config) UpDirection() vecmath.UpDirection {
	up, err := vecmath.ParseUpDirection(c.Math.Up)
	if err != nil {
		return vecmath.ZUp
	}
	return up
}
