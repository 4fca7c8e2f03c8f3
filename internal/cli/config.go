package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by all wryctl commands.
type Config struct {
	// Library is the backend library path. Empty means wry.LibraryPath.
	Library string `mapstructure:"library" yaml:"library"`
	// Checksum is the expected BLAKE2b-256 digest of Library.
	Checksum string `mapstructure:"checksum" yaml:"checksum"`
	Debug    bool   `mapstructure:"debug" yaml:"debug"`
}

// loadConfig merges, from lowest to highest precedence, the config file,
// WRY_* environment variables and command line flags. Without an explicit
// file, config.yaml in the user config directory is read if present.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet, file string) (*Config, error) {
	for _, key := range []string{"library", "checksum", "debug"} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}
	v.SetEnvPrefix("WRY")
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(dir, "wryctl"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
