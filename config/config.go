package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"notesapi/logger"

	"github.com/spf13/viper"
)

type DefaultPaths struct {
	ConfigDir  string
	LogPathApp string
	DBPath     string
	LogLevel   string
}

type Configuration struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Server struct {
		Port    string `mapstructure:"port"`
		LogPath string `mapstructure:"log_path"`

		// RateLimit throttles each client address; rps 0 turns it off.
		RateLimit struct {
			RPS   float64 `mapstructure:"rps"`
			Burst int     `mapstructure:"burst"`
		} `mapstructure:"rate_limit"`
	} `mapstructure:"server"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
	Pagination struct {
		DefaultLimit int `mapstructure:"default_limit"`
	} `mapstructure:"pagination"`
}

var AppConfig Configuration

const (
	DefaultServerPort   = "8778"
	DefaultPageLimit    = 20
	DefaultRateBurst    = 20
	envPrefix           = "NOTESAPI"
	configDirName       = "notesapi"
	defaultDatabaseName = "notes.db"
)

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func GetDefaultConfigPaths() DefaultPaths {
	var paths DefaultPaths
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not get user config dir: %v. Using current directory.\n", err)
		userConfigDir = "."
	}

	paths.ConfigDir = filepath.Join(userConfigDir, configDirName)
	paths.LogPathApp = filepath.Join(paths.ConfigDir, "logs", "app.log")
	paths.DBPath = filepath.Join(paths.ConfigDir, defaultDatabaseName)
	paths.LogLevel = "INFO"
	return paths
}

// Overrides carries command-line values that win over file and environment.
type Overrides struct {
	DBPath     string
	AppLogPath string
	LogLevel   string
}

// Init loads configuration from defaults, an optional YAML file and
// NOTESAPI_* environment variables, applies flag overrides, then
// (re)initializes the global loggers.
func Init(cfgFile string, flags Overrides) error {
	cfg, used, readErr := Load(cfgFile)
	if err := cfg.applyOverrides(flags); err != nil {
		return err
	}
	AppConfig = cfg

	if err := logger.InitGlobalLoggers(AppConfig.Server.LogPath, AppConfig.Logging.Level); err != nil {
		return fmt.Errorf("failed to initialize global loggers with final config: %w", err)
	}

	if used != "" {
		logger.Info("Using config file: %s", used)
	} else {
		logger.Info("Using default/environment configuration.")
	}
	if readErr != nil && cfgFile != "" {
		logger.Error("Error occurred reading specified config file '%s': %v", cfgFile, readErr)
	}
	logger.Debug("Final AppConfig Initialized: %+v", AppConfig)
	return nil
}

// Load builds a Configuration without touching globals. It returns the config
// file actually used (empty when none) and any non-fatal read error.
func Load(cfgFile string) (Configuration, string, error) {
	v := viper.New()

	defaults := GetDefaultConfigPaths()
	v.SetDefault("database.path", defaults.DBPath)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.log_path", defaults.LogPathApp)
	v.SetDefault("logging.level", defaults.LogLevel)
	v.SetDefault("pagination.default_limit", DefaultPageLimit)
	v.SetDefault("server.rate_limit.rps", 0)
	v.SetDefault("server.rate_limit.burst", DefaultRateBurst)

	if cfgFile != "" {
		expanded, err := ExpandTilde(cfgFile)
		if err != nil {
			expanded = cfgFile
		}
		v.SetConfigFile(expanded)
	} else {
		v.AddConfigPath(defaults.ConfigDir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var used string
	readErr := v.ReadInConfig()
	if readErr == nil {
		used = v.ConfigFileUsed()
	} else if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config file %s: %v\n", v.ConfigFileUsed(), readErr)
	} else {
		readErr = nil
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, used, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if cfg.Pagination.DefaultLimit < 0 {
		cfg.Pagination.DefaultLimit = DefaultPageLimit
	}

	var err error
	if cfg.Database.Path, err = ExpandTilde(cfg.Database.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in database.path '%s': %v.\n", cfg.Database.Path, err)
	}
	if cfg.Server.LogPath, err = ExpandTilde(cfg.Server.LogPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in server.log_path '%s': %v.\n", cfg.Server.LogPath, err)
	}
	return cfg, used, readErr
}

func (c *Configuration) applyOverrides(flags Overrides) error {
	if flags.DBPath != "" {
		p, err := ExpandTilde(flags.DBPath)
		if err != nil {
			return fmt.Errorf("expanding --dbpath %q: %w", flags.DBPath, err)
		}
		c.Database.Path = p
	}
	if flags.AppLogPath != "" {
		p, err := ExpandTilde(flags.AppLogPath)
		if err != nil {
			return fmt.Errorf("expanding --app-log %q: %w", flags.AppLogPath, err)
		}
		c.Server.LogPath = p
	}
	if flags.LogLevel != "" {
		c.Logging.Level = strings.ToUpper(flags.LogLevel)
	}
	return nil
}
