package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	JWT      JWTConfig      `yaml:"jwt"`
	Cognito  CognitoConfig  `yaml:"cognito"`
	Push     PushConfig     `yaml:"push"`
	Travel   TravelConfig   `yaml:"travel"`
	Client   ClientConfig   `yaml:"client"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // custom S3-compatible endpoint, optional
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// PushConfig holds web-push (VAPID) configuration
type PushConfig struct {
	VAPIDPublicKey  string `yaml:"vapid_public_key"`
	VAPIDPrivateKey string `yaml:"vapid_private_key"`
	Subscriber      string `yaml:"subscriber"` // mailto: contact for VAPID claims
}

// TravelConfig holds settings for the postcard location worker
type TravelConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Interval     time.Duration `yaml:"interval"`
	SpeedKmh     float64       `yaml:"speed_kmh"`
	ArriveMeters float64       `yaml:"arrive_meters"`
}

// CognitoConfig holds identity provider settings. The server uses the
// pool ID to verify ID tokens; the client only needs region and app
// client ID to drive the sign-in flows.
type CognitoConfig struct {
	Region     string `yaml:"region"`
	UserPoolID string `yaml:"user_pool_id"`
	ClientID   string `yaml:"client_id"`
}

// ClientConfig holds configuration for the CLI client
type ClientConfig struct {
	ServerURL    string        `yaml:"server_url"`
	Cognito      CognitoConfig `yaml:"cognito"`
	CacheDir     string        `yaml:"cache_dir"`
	PushEndpoint string        `yaml:"push_endpoint"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Travel.Interval <= 0 {
		c.Travel.Interval = 30 * time.Second
	}
	if c.Travel.SpeedKmh <= 0 {
		c.Travel.SpeedKmh = 60
	}
	if c.Travel.ArriveMeters <= 0 {
		c.Travel.ArriveMeters = 500
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
