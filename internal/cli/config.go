package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings are the CLI defaults. Flags win over NEONCV_* env vars, which
// win over ~/.neoncv/config.yaml.
type Settings struct {
	HistoryDB     string        `mapstructure:"history_db"`
	ChromePath    string        `mapstructure:"chrome_path"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
	InlineImages  bool          `mapstructure:"inline_images"`
	LogLevel      string        `mapstructure:"log_level"`
	S3Region      string        `mapstructure:"s3_region"`
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".neoncv"
	}
	return filepath.Join(home, ".neoncv")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("history_db", filepath.Join(configDir(), "history.db"))
	v.SetDefault("chrome_path", "")
	v.SetDefault("render_timeout", "60s")
	v.SetDefault("inline_images", true)
	v.SetDefault("log_level", "warn")
	v.SetDefault("s3_region", "")
}

// loadSettings reads the optional config file. A missing file is fine.
func loadSettings(v *viper.Viper, configFile string) (Settings, error) {
	setDefaults(v)
	v.SetEnvPrefix("neoncv")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return s, nil
}
