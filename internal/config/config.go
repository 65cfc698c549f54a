package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Event    EventConfig    `mapstructure:"event"`
	Batch    BatchConfig    `mapstructure:"batch"`
}

type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	Auth         AuthConfig      `mapstructure:"auth"`
}

type AuthConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	JWTSecret         string        `mapstructure:"jwtSecret"`
	AccessTokenTTL    time.Duration `mapstructure:"accessTokenTTL"`
	RefreshTokenTTL   time.Duration `mapstructure:"refreshTokenTTL"`
	AllowRegistration bool          `mapstructure:"allowRegistration"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type MetricsConfig struct {
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

// EventConfig points at the RabbitMQ broker. An empty URL disables
// publishing (the no-op publisher is wired instead).
type EventConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type BatchConfig struct {
	IntegritySchedule string        `mapstructure:"integritySchedule"`
	IntegrityTimeout  time.Duration `mapstructure:"integrityTimeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.rps", 20.0)
	v.SetDefault("server.rateLimit.burst", 40)
	v.SetDefault("server.auth.enabled", true)
	v.SetDefault("server.auth.jwtSecret", "")
	v.SetDefault("server.auth.accessTokenTTL", 15*time.Minute)
	v.SetDefault("server.auth.refreshTokenTTL", 7*24*time.Hour)
	v.SetDefault("server.auth.allowRegistration", true)

	v.SetDefault("database.url", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("event.url", "")
	v.SetDefault("event.exchange", "lending.events")

	v.SetDefault("batch.integritySchedule", "0 3 * * *")
	v.SetDefault("batch.integrityTimeout", 30*time.Minute)
}

// LoadConfig reads config.yaml from path (optional) and overlays environment
// variables, e.g. SERVER_PORT or DATABASE_URL.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
