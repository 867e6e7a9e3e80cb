package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Shipment  ShipmentConfig
	MQTT      MQTTConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	MaxRequestBytes int64
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// JWTConfig holds the two independent signing keys. User tokens and
// control-unit tokens never share a secret.
type JWTConfig struct {
	Secret                string
	ControlUnitSecret     string
	Algorithm             string
	ExpiryMinutes         int
	ControlUnitTTLMinutes int
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type ShipmentConfig struct {
	EnforceTransitions bool
}

type MQTTConfig struct {
	Broker        string
	ClientID      string
	Username      string
	Password      string
	ReadingsTopic string
	QoS           int
	Workers       int
	QueueSize     int
}

// BootstrapConfig names an admin account created at startup when missing.
type BootstrapConfig struct {
	AdminUsername string
	AdminPassword string
}

// Enabled reports whether MQTT ingestion should be started.
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("REQUEST_MAX_BYTES", 10<<20)

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_EXPIRY_MINUTES", 30)
	v.SetDefault("CONTROL_UNIT_TOKEN_TTL_MINUTES", 30)

	v.SetDefault("RATE_LIMIT_PER_MINUTE", 50)
	v.SetDefault("RATE_LIMIT_BURST", 50)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,X-Request-ID")
	v.SetDefault("CORS_EXPOSED_HEADERS", "X-Request-ID")
	v.SetDefault("CORS_ALLOW_CREDENTIALS", true)
	v.SetDefault("CORS_MAX_AGE", 12*time.Hour)

	v.SetDefault("SHIPMENT_ENFORCE_TRANSITIONS", false)

	v.SetDefault("MQTT_CLIENT_ID", "shipment-tracker")
	v.SetDefault("MQTT_READINGS_TOPIC", "control-units/+/readings")
	v.SetDefault("MQTT_QOS", 1)
	v.SetDefault("MQTT_WORKERS", 4)
	v.SetDefault("MQTT_QUEUE_SIZE", 256)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("ENVIRONMENT"),
			MaxRequestBytes: v.GetInt64("REQUEST_MAX_BYTES"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("JWT_SECRET"),
			ControlUnitSecret:     v.GetString("CONTROL_UNIT_JWT_SECRET"),
			Algorithm:             strings.ToUpper(v.GetString("JWT_ALGORITHM")),
			ExpiryMinutes:         v.GetInt("JWT_EXPIRY_MINUTES"),
			ControlUnitTTLMinutes: v.GetInt("CONTROL_UNIT_TOKEN_TTL_MINUTES"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
			Burst:     v.GetInt("RATE_LIMIT_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(v.GetString("CORS_EXPOSED_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetDuration("CORS_MAX_AGE"),
		},
		Shipment: ShipmentConfig{
			EnforceTransitions: v.GetBool("SHIPMENT_ENFORCE_TRANSITIONS"),
		},
		MQTT: MQTTConfig{
			Broker:        v.GetString("MQTT_BROKER"),
			ClientID:      v.GetString("MQTT_CLIENT_ID"),
			Username:      v.GetString("MQTT_USERNAME"),
			Password:      v.GetString("MQTT_PASSWORD"),
			ReadingsTopic: v.GetString("MQTT_READINGS_TOPIC"),
			QoS:           v.GetInt("MQTT_QOS"),
			Workers:       v.GetInt("MQTT_WORKERS"),
			QueueSize:     v.GetInt("MQTT_QUEUE_SIZE"),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: v.GetString("BOOTSTRAP_ADMIN_USERNAME"),
			AdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
		},
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.DBName == "") {
		return errors.New("database configuration is missing: set DATABASE_URL or DB_HOST and DB_NAME")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.ControlUnitSecret == "" {
		return errors.New("CONTROL_UNIT_JWT_SECRET is required")
	}
	if c.JWT.Secret == c.JWT.ControlUnitSecret {
		return errors.New("JWT_SECRET and CONTROL_UNIT_JWT_SECRET must differ")
	}
	if _, ok := supportedAlgorithms[c.JWT.Algorithm]; !ok {
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWT.Algorithm)
	}
	if c.JWT.ExpiryMinutes <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be positive")
	}
	if (c.Bootstrap.AdminUsername == "") != (c.Bootstrap.AdminPassword == "") {
		return errors.New("BOOTSTRAP_ADMIN_USERNAME and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	if c.RateLimit.PerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

func (c *JWTConfig) ControlUnitTTL() time.Duration {
	return time.Duration(c.ControlUnitTTLMinutes) * time.Minute
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
