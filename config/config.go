package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	Expiry    time.Duration `mapstructure:"expiry"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT   JWTConfig `mapstructure:"jwt"`
	Admin struct {
		SecretCode string `mapstructure:"secretCode"`
	} `mapstructure:"admin"`
	Gemini struct {
		Model  string `mapstructure:"model"`
		APIKey string `mapstructure:"apiKey"`
	} `mapstructure:"gemini"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	// Secrets never live in the YAML; the environment wins.
	applyEnvOverrides(&config)

	if config.JWT.SecretKey == "" {
		return Config{}, fmt.Errorf("JWT_SECRET_KEY is not configured")
	}
	return config, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Repositories.Postgres.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Repositories.Postgres.Host = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.JWT.SecretKey = v
	}
	if v := os.Getenv("ADMIN_SECRET_CODE"); v != "" {
		cfg.Admin.SecretCode = v
	}
	if v := os.Getenv("GOOGLE_GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
}
