// Package config manages application configuration using viper.
// It supports configuration from YAML files (.deepread.yaml), environment
// variables (DEEPREAD_ prefix), and command-line flags with sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds all application configuration values.
// It is populated from config files, environment variables, and command-line flags.
type Config struct {
	API     APIConfig     `mapstructure:"api"`     // Backend API settings
	Session SessionConfig `mapstructure:"session"` // Stored credential settings
	Log     LogConfig     `mapstructure:"log"`     // Logging settings
	Export  ExportConfig  `mapstructure:"export"`  // Citation and PDF export settings
}

// APIConfig holds settings for the backend API connection.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"` // Backend base URL (e.g. http://localhost:8000)
	Timeout int    `mapstructure:"timeout"`  // Request timeout in seconds for non-streaming calls
}

// SessionConfig holds settings for the persisted login session.
type SessionConfig struct {
	File string `mapstructure:"file"` // Path to the session token file
}

// LogConfig holds logging settings. The interactive UI owns the terminal,
// so logs go to a file by default.
type LogConfig struct {
	Level string `mapstructure:"level"` // Log level (debug, info, warn, error)
	File  string `mapstructure:"file"`  // Log file path
}

// ExportConfig holds settings for files written by export operations.
type ExportConfig struct {
	Dir string `mapstructure:"dir"` // Directory for exported citations and downloads
}

var (
	cfg        Config
	configFile string
)

// Init initializes the configuration system by setting defaults,
// loading config files from current and home directories, and
// enabling environment variable overrides with the DEEPREAD_ prefix.
func Init() {
	setDefaults()
	loadConfigFile()
	loadEnvVars()
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8000")
	viper.SetDefault("api.timeout", 30)

	viper.SetDefault("session.file", filepath.Join(StateDir(), "session.json"))

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(StateDir(), "deepread.log"))

	viper.SetDefault("export.dir", ".")
}

func loadConfigFile() {
	viper.SetConfigName(".deepread")
	viper.SetConfigType("yaml")

	// Project config first, then the global one in the home directory.
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err == nil {
		configFile = viper.ConfigFileUsed()
	}
}

func loadEnvVars() {
	viper.SetEnvPrefix("DEEPREAD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// BindFlags binds cobra command-line flags to viper configuration values.
// This enables flags like --server and --log-level to override config file settings.
func BindFlags(cmd *cobra.Command) {
	// Errors are ignored as flags are guaranteed to exist.
	_ = viper.BindPFlag("api.base_url", cmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("api.timeout", cmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.file", cmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("session.file", cmd.PersistentFlags().Lookup("session-file"))
}

// Get returns the current configuration by unmarshaling all viper values.
// Call this after Init and BindFlags to get the final merged configuration.
func Get() *Config {
	// Error is ignored as defaults are always valid.
	_ = viper.Unmarshal(&cfg)
	return &cfg
}

// GetConfigPath returns the path to the config file that was loaded,
// or an empty string if no config file was found.
func GetConfigPath() string {
	return configFile
}

// GetDefaultConfigPath returns the default global config file path (~/.deepread.yaml).
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".deepread.yaml")
}

// StateDir returns the directory used for session, log, and cache files.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deepread"
	}
	return filepath.Join(home, ".deepread")
}
