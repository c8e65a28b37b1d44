package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	SiteName string
	BaseURL  string // Used to build links in emails
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Seed     SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql, postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // sqlite file path
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// SMTPConfig holds outgoing mail configuration. An empty Host disables
// delivery and mail is logged instead.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AuthConfig holds login flow settings
type AuthConfig struct {
	OTPMinutes          int
	VerifyTokenHours    int
	ResetTokenMinutes   int
	RequireVerification bool
}

// SeedConfig holds the bootstrap admin account
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	AdminZionID   int64
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production reads the real environment
	_ = godotenv.Load()

	// Trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	cfg := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		SiteName: getEnv("SITE_NAME", "EVAPOD"),
		BaseURL:  strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		SMTP:     loadSMTPConfig(),
		Auth:     loadAuthConfig(),
		Seed:     loadSeedConfig(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER: '%s' (must be mysql, postgres or sqlite)", c.Database.Driver)
	}
	if c.IsProd() && (c.JWT.Secret == defaultSecret || c.JWT.RefreshSecret == defaultRefreshSecret) {
		return fmt.Errorf("JWT secrets must be set in prod mode")
	}
	return nil
}

const (
	defaultSecret        = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "evapod"),
		Path:     getEnv(prefix+"DB_PATH", "evapod.db"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnvInt("SMTP_PORT", 587),
		Username: getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASS", ""),
		From:     getEnv("MAIL_FROM", "noreply@evapod.org"),
	}
}

func loadAuthConfig() AuthConfig {
	requireVerification, _ := strconv.ParseBool(getEnv("REQUIRE_EMAIL_VERIFICATION", "true"))

	return AuthConfig{
		OTPMinutes:          getEnvInt("OTP_MINUTES", 10),
		VerifyTokenHours:    getEnvInt("VERIFY_TOKEN_HOURS", 24),
		ResetTokenMinutes:   getEnvInt("RESET_TOKEN_MINUTES", 60),
		RequireVerification: requireVerification,
	}
}

func loadSeedConfig() SeedConfig {
	zionID, _ := strconv.ParseInt(getEnv("SEED_ADMIN_ZION_ID", "1000"), 10, 64)

	return SeedConfig{
		AdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		AdminZionID:   zionID,
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return c.BaseURL
	}
	return origins
}
