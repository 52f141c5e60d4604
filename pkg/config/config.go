package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
}

type ServerConfig struct {
	Port              int    `mapstructure:"port"`
	MetricsPort       int    `mapstructure:"metrics_port"`
	Host              string `mapstructure:"host"`
	PublicBaseURL     string `mapstructure:"public_base_url"`
	SecretKey         string `mapstructure:"secret_key"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AlertsConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	SMTPHost   string `mapstructure:"smtp_host"`
	SMTPPort   int    `mapstructure:"smtp_port"`
	SMTPUser   string `mapstructure:"smtp_user"`
	SMTPPass   string `mapstructure:"smtp_pass"`
	EmailFrom  string `mapstructure:"email_from"`
	EmailTo    string `mapstructure:"email_to"`
}

type ProxyConfig struct {
	DriveAPIKey string `mapstructure:"drive_api_key"`
}

var globalConfig Config

func Load(configPath string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SENTINEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaultValues()
	return nil
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Redis.Host == "" {
		globalConfig.Redis.Host = "localhost"
	}
	if globalConfig.Redis.Port == 0 {
		globalConfig.Redis.Port = 6379
	}
	if globalConfig.Alerts.SMTPPort == 0 {
		globalConfig.Alerts.SMTPPort = 587
	}
}

func GetConfig() *Config {
	return &globalConfig
}
