package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all process configuration, read once at startup. The token
// secret and lifetimes are injected into the services that need them rather
// than read from the environment at call time.
type Config struct {
	Port string
	Env  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret        string
	JWTExpire        time.Duration
	JWTCookieExpire  int // days
	ResetTokenExpire time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string

	GeocoderAPIKey string

	FileUploadPath string
	MaxFileUpload  int64
}

// Load reads configuration from environment variables. It returns an error
// for missing required values instead of falling back to guesses.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "5000"),
		Env:              getEnv("ENVIRONMENT", "development"),
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTExpire:        getDuration("JWT_EXPIRE", 720*time.Hour),
		JWTCookieExpire:  getInt("JWT_COOKIE_EXPIRE", 30),
		ResetTokenExpire: getDuration("RESET_TOKEN_EXPIRE", 10*time.Minute),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getInt("SMTP_PORT", 587),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		FromEmail:        getEnv("FROM_EMAIL", "noreply@devcamper.io"),
		FromName:         getEnv("FROM_NAME", "DevCamper"),
		GeocoderAPIKey:   os.Getenv("GEOCODER_API_KEY"),
		FileUploadPath:   getEnv("FILE_UPLOAD_PATH", "./public/uploads"),
		MaxFileUpload:    int64(getInt("MAX_FILE_UPLOAD", 1000000)),
	}

	for name, v := range map[string]string{
		"DB_HOST":    cfg.DBHost,
		"DB_USER":    cfg.DBUser,
		"DB_NAME":    cfg.DBName,
		"JWT_SECRET": cfg.JWTSecret,
	} {
		if v == "" {
			return nil, fmt.Errorf("missing required environment variable %s", name)
		}
	}

	return cfg, nil
}

// Production reports whether the service runs in production mode. Cookie
// security depends on this.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
