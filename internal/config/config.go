package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PasscodeConfig struct {
	DefaultUsageLimit int    `yaml:"default_usage_limit"`
	DefaultValidHours int    `yaml:"default_valid_hours"`
	CodeLength        int    `yaml:"code_length"`
	GenerateRetries   int    `yaml:"generate_retries"`
	CASRetries        int    `yaml:"cas_retries"`
	ValidateTimeout   string `yaml:"validate_timeout"`
	ResendWindow      string `yaml:"resend_window"`
	AttemptLogSize    int    `yaml:"attempt_log_size"`
	AttemptLogTTL     string `yaml:"attempt_log_ttl"`
}

type QRConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type DeviceConfig struct {
	APIKey string `yaml:"api_key"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Passcode PasscodeConfig `yaml:"passcode"`
	QR       QRConfig       `yaml:"qr"`
	Device   DeviceConfig   `yaml:"device"`
	Twilio   TwilioConfig   `yaml:"twilio"`
}

type Config struct {
	Port              string
	GinMode           string
	DSN               string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	LogLevel          string
	LogFormat         string
	DefaultUsageLimit int
	DefaultValidHours int
	CodeLength        int
	GenerateRetries   int
	CASRetries        int
	ValidateTimeout   time.Duration
	ResendWindow      time.Duration
	AttemptLogSize    int
	AttemptLogTTL     time.Duration
	QRSecret          string
	QRIssuer          string
	DeviceAPIKey      string
	TwilioSID         string
	TwilioToken       string
	TwilioFrom        string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml and applies environment overrides for the
// secrets that should not live in the file.
func Load() (*Config, error) {
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	validateTimeout, err := parseDuration(configFile.Passcode.ValidateTimeout, 800*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid validate timeout: %w", err)
	}
	resendWindow, err := parseDuration(configFile.Passcode.ResendWindow, 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid resend window: %w", err)
	}
	attemptTTL, err := parseDuration(configFile.Passcode.AttemptLogTTL, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid attempt log TTL: %w", err)
	}

	cfg := &Config{
		Port:              fmt.Sprintf("%d", defaultInt(configFile.App.Port, 8080)),
		GinMode:           configFile.App.GinMode,
		DSN:               env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:         env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:     env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:           configFile.Redis.DB,
		LogLevel:          configFile.Log.Level,
		LogFormat:         configFile.Log.Format,
		DefaultUsageLimit: defaultInt(configFile.Passcode.DefaultUsageLimit, 1),
		DefaultValidHours: defaultInt(configFile.Passcode.DefaultValidHours, 24),
		CodeLength:        defaultInt(configFile.Passcode.CodeLength, 10),
		GenerateRetries:   defaultInt(configFile.Passcode.GenerateRetries, 5),
		CASRetries:        defaultInt(configFile.Passcode.CASRetries, 3),
		ValidateTimeout:   validateTimeout,
		ResendWindow:      resendWindow,
		AttemptLogSize:    defaultInt(configFile.Passcode.AttemptLogSize, 50),
		AttemptLogTTL:     attemptTTL,
		QRSecret:          env("QR_SECRET", configFile.QR.Secret),
		QRIssuer:          configFile.QR.Issuer,
		DeviceAPIKey:      env("DEVICE_API_KEY", configFile.Device.APIKey),
		TwilioSID:         env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:       env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:        env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
	}

	if cfg.DefaultUsageLimit < 1 {
		return nil, fmt.Errorf("default usage limit must be >= 1, got %d", cfg.DefaultUsageLimit)
	}
	if cfg.DefaultValidHours < 1 {
		return nil, fmt.Errorf("default valid hours must be >= 1, got %d", cfg.DefaultValidHours)
	}
	if cfg.QRSecret == "" {
		return nil, fmt.Errorf("qr secret is required")
	}

	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
