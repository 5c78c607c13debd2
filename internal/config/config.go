package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishing-analyzer/")
	v.AddConfigPath("$HOME/.phishing-analyzer")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("PHISHING_ANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Analysis defaults
	v.SetDefault("analysis.vocabulary", []string{
		"urgent", "verify", "password", "bank", "account", "confirm", "login", "click here",
	})
	v.SetDefault("analysis.subject_vocabulary", []string{"urgent", "verify"})
	v.SetDefault("analysis.suspicious_tlds", []string{".ru", ".xyz", ".top", ".club"})
	v.SetDefault("analysis.attachment_extensions", []string{".exe", ".js", ".bat", ".scr", ".ps1"})

	// Verdict defaults
	v.SetDefault("verdict.malicious_threshold", 70)
	v.SetDefault("verdict.suspicious_threshold", 30)

	// Model defaults
	v.SetDefault("model.path", "")
	v.SetDefault("model.meta_path", "")

	// Reputation defaults
	v.SetDefault("reputation.flagged_ips", []string{})

	// Server defaults
	v.SetDefault("server.filter_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_malicious", false)
	v.SetDefault("server.headers.verdict", "X-Phishing-Verdict")
	v.SetDefault("server.headers.score", "X-Phishing-Score")
	v.SetDefault("server.headers.reason", "X-Phishing-Reason")
	v.SetDefault("server.postfix.address", "127.0.0.1")
	v.SetDefault("server.postfix.port", 10026)
	v.SetDefault("server.postfix.enabled", true)
	v.SetDefault("server.subject_prefix", "")
	v.SetDefault("server.modify_subject", false)

	// CLI defaults
	v.SetDefault("cli.verbose", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
