package main

import (
	"strings"

	"github.com/spf13/viper"
)

// Config is the process configuration, read from an optional
// config.yaml in the working directory with environment variable
// overrides (APP_DATABASE_PATH, APP_LISTEN).
type Config struct {
	DatabasePath string `mapstructure:"database_path"`
	Listen       string `mapstructure:"listen"`
}

func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("database_path", "sheets.db")
	v.SetDefault("listen", ":8080")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, err
		}
	}

	var config Config
	err := v.Unmarshal(&config)
	return config, err
}
