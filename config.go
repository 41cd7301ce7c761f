package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config carries everything main.go needs to assemble the app. Values
// come from config.yaml when present, overridden by environment
// variables prefixed with ANTIGRAVITY_.
type Config struct {
	Port          int    `mapstructure:"port"`
	Env           string `mapstructure:"env"`
	BaseURL       string `mapstructure:"base_url"`
	UploadDir     string `mapstructure:"upload_dir"`
	Pepper        string `mapstructure:"pepper"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	JWTTTLMinutes int    `mapstructure:"jwt_ttl_minutes"`
	SentryDSN     string `mapstructure:"sentry_dsn"`

	Database PostgresConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	// Addr left empty disables the follower-count cache.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ConnectionInfo builds the postgres connection string.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
			pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// IsProd reports whether we're running in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// LoadConfig reads the configuration. A missing config file is fine in
// development, the defaults cover a local setup.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("port", 3000)
	v.SetDefault("env", "dev")
	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("pepper", "secret-random-string")
	v.SetDefault("jwt_secret", "secret-jwt-key")
	v.SetDefault("jwt_ttl_minutes", 60*24)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "antigravity")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetEnvPrefix("antigravity")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
