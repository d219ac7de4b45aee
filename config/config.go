// Package config loads the blogicum configuration from defaults, an optional
// blogicum.yaml file, a .env file and BLOGICUM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Media    MediaConfig    `mapstructure:"media"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

type ServerConfig struct {
	Addr               string `mapstructure:"addr"`
	Debug              bool   `mapstructure:"debug"`
	PublicURL          string `mapstructure:"public_url"`
	SecureCookies      bool   `mapstructure:"secure_cookies"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type MediaConfig struct {
	Backend    string        `mapstructure:"backend"`
	Dir        string        `mapstructure:"dir"`
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
	S3         S3Config      `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

// TracingConfig enables OTLP/HTTP trace export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type SeedConfig struct {
	Categories []SeedCategory `mapstructure:"categories"`
	Locations  []SeedLocation `mapstructure:"locations"`
}

type SeedCategory struct {
	Title       string `mapstructure:"title"`
	Slug        string `mapstructure:"slug"`
	Description string `mapstructure:"description"`
	Published   *bool  `mapstructure:"published"`
}

type SeedLocation struct {
	Name      string `mapstructure:"name"`
	Published *bool  `mapstructure:"published"`
}

// setDefaults registers every key, AutomaticEnv only overrides keys viper
// already knows about.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.public_url", "http://localhost:8000")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.rate_limit_per_minute", 100)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "blogicum.db?_foreign_keys=on")

	v.SetDefault("media.backend", "local")
	v.SetDefault("media.dir", "media")
	v.SetDefault("media.presign_ttl", 15*time.Minute)
	v.SetDefault("media.s3.endpoint", "")
	v.SetDefault("media.s3.access_key", "")
	v.SetDefault("media.s3.secret_key", "")
	v.SetDefault("media.s3.use_ssl", false)
	v.SetDefault("media.s3.bucket", "blogicum")
	v.SetDefault("media.s3.region", "us-east-1")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "blogicum")
}

// Load reads configuration. configFile may be empty, in which case
// blogicum.yaml is looked up in the working directory and /etc/blogicum.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("blogicum")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/blogicum")
	}

	v.SetEnvPrefix("BLOGICUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Media.Backend {
	case "local":
		if c.Media.Dir == "" {
			return errors.New("media.dir is required for the local media backend")
		}
	case "s3":
		if c.Media.S3.Endpoint == "" || c.Media.S3.Bucket == "" {
			return errors.New("media.s3.endpoint and media.s3.bucket are required for the s3 media backend")
		}
	default:
		return fmt.Errorf("unsupported media backend %q", c.Media.Backend)
	}

	if c.Server.RateLimitPerMinute <= 0 {
		return errors.New("server.rate_limit_per_minute must be positive")
	}
	return nil
}
