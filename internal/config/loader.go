package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from a file and the environment, merged over
// defaults. Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("LIBSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("libscraper")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("format", cfg.Format)
	v.SetDefault("user_agent", cfg.UserAgent)
	v.SetDefault("request_interval", cfg.RequestInterval)
	v.SetDefault("batch_size", cfg.BatchSize)
	v.SetDefault("batch_interval", cfg.BatchInterval)
	v.SetDefault("data_directory", cfg.DataDirectory)
	v.SetDefault("files_directory", cfg.FilesDirectory)
	v.SetDefault("use_browser", cfg.UseBrowser)
	v.SetDefault("request_timeout", cfg.RequestTimeout)
	v.SetDefault("max_body_size", cfg.MaxBodySize)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.wait_selector", cfg.Browser.WaitSelector)
	v.SetDefault("browser.page_load_timeout", cfg.Browser.PageLoadTimeout)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
