package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DICTCC_DATA_DIR
const EnvPrefix = "DICTCC"

type Config struct {
	SourceDir        string `mapstructure:"source_dir" validate:"required"`
	DataDir          string `mapstructure:"data_dir" validate:"required"`
	TempDir          string `mapstructure:"temp_dir" validate:"required"`
	MetadataVersion  int    `mapstructure:"metadata_version" validate:"gte=1"`
	ProgressInterval int    `mapstructure:"progress_interval" validate:"gte=1"`

	Search SearchConfig `mapstructure:"search"`
	Log    LogConfig    `mapstructure:"log"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

type SearchConfig struct {
	MaxResults     int `mapstructure:"max_results" validate:"gte=1,lte=200"`
	CacheSize      int `mapstructure:"cache_size" validate:"gte=1"`
	StoreCacheSize int `mapstructure:"store_cache_size" validate:"gte=1"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" validate:"gt=0"`
}

// Loader reads the configuration from defaults, an optional YAML file,
// DICTCC_* environment variables and bound command line flags, in
// increasing order of precedence.
type Loader struct {
	viper      *viper.Viper
	configFile string
	validator  *validator.Validate
	translator ut.Translator
}

func NewLoader(configFile string) (*Loader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Loader{
		viper:      v,
		configFile: configFile,
		validator:  validate,
		translator: trans,
	}, nil
}

// BindFlag lets a changed command line flag override key
func (loader *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("flag for %s is not defined", key)
	}
	if err := loader.viper.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
	}
	return nil
}

// ConfigFileUsed returns the file read by Load, or "" if none was found
func (loader *Loader) ConfigFileUsed() string {
	return loader.viper.ConfigFileUsed()
}

func (loader *Loader) Load() (*Config, error) {
	v := loader.viper

	file := loader.configFile
	if file == "" {
		file = findConfigFile()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// Load is a shortcut for NewLoader(configFile).Load() without flags
func Load(configFile string) (*Config, error) {
	loader, err := NewLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("source_dir", filepath.Join(home, "Downloads"))
	v.SetDefault("data_dir", defaultDataDir(home))
	v.SetDefault("temp_dir", filepath.Join(os.TempDir(), "dictcc-mcp"))
	v.SetDefault("metadata_version", 1)
	v.SetDefault("progress_interval", 1000)
	v.SetDefault("search.max_results", 200)
	v.SetDefault("search.cache_size", 128)
	v.SetDefault("search.store_cache_size", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("watch.debounce", "2s")
}

func defaultDataDir(home string) string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dictcc-mcp")
	}
	return filepath.Join(home, ".local", "share", "dictcc-mcp")
}

// findConfigFile returns the first existing default config location
func findConfigFile() string {
	candidates := []string{"dictcc.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "dictcc", "config.yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
