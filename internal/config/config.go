package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Security SecurityConfig `mapstructure:"security"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Site     SiteConfig     `mapstructure:"site"`
	Email    EmailConfig    `mapstructure:"email"`
	Campaign CampaignConfig `mapstructure:"campaign"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	TLS  struct {
		Enabled  bool   `mapstructure:"enabled"`
		CertFile string `mapstructure:"cert_file"`
		KeyFile  string `mapstructure:"key_file"`
	} `mapstructure:"tls"`
}

// DatabaseConfig holds PostgreSQL configuration. Contacts and the audit trail
// fall back to in-memory stores when Enabled is false.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration. Rate limiting uses an in-process
// counter when Enabled is false.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	Admin        AdminConfig        `mapstructure:"admin"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	// TrustedProxies lists the addresses or CIDR ranges whose
	// X-Forwarded-For header is believed. Empty means use the peer address.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// AdminConfig holds the credential and token settings for the admin API.
type AdminConfig struct {
	// PasswordHash is an argon2id hash produced by `mailctl hash-password`.
	PasswordHash string        `mapstructure:"password_hash"`
	TokenSecret  string        `mapstructure:"token_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	Issuer       string        `mapstructure:"issuer"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	FormLimit   int           `mapstructure:"form_limit"`
	FormWindow  time.Duration `mapstructure:"form_window"`
	LoginLimit  int           `mapstructure:"login_limit"`
	LoginWindow time.Duration `mapstructure:"login_window"`
	AdminLimit  int           `mapstructure:"admin_limit"`
	AdminWindow time.Duration `mapstructure:"admin_window"`
}

// CORSConfig lists the site origins allowed to post forms.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SiteConfig describes the public site the emails speak for.
type SiteConfig struct {
	Name       string `mapstructure:"name"`
	Tagline    string `mapstructure:"tagline"`
	WebsiteURL string `mapstructure:"website_url"`
	DonateURL  string `mapstructure:"donate_url"`
	// AdminEmail receives every form notification.
	AdminEmail string `mapstructure:"admin_email"`
}

// EmailConfig holds email delivery configuration
type EmailConfig struct {
	// Provider is "auto" or one of "brevo", "smtp", "mailgun", "gmail".
	Provider string `mapstructure:"provider"`
	// Order is the candidate order used when Provider is "auto".
	Order []string `mapstructure:"order"`
	// Fallback is the provider tried once when the primary fails.
	// "auto" picks the next configured candidate, "" or "none" disables it.
	Fallback  string        `mapstructure:"fallback"`
	AutoReply bool          `mapstructure:"auto_reply"`
	Timeout   time.Duration `mapstructure:"timeout"`

	SenderName    string `mapstructure:"sender_name"`
	SenderAddress string `mapstructure:"sender_address"`

	Brevo   BrevoConfig      `mapstructure:"brevo"`
	SMTP    SMTPConfig       `mapstructure:"smtp"`
	Mailgun MailgunConfig    `mapstructure:"mailgun"`
	Gmail   GmailEmailConfig `mapstructure:"gmail"`
}

// BrevoConfig holds Brevo transactional API settings
type BrevoConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// SMTPConfig holds SMTP settings. Service selects a preset host and port.
type SMTPConfig struct {
	// Service is one of "gmail", "outlook", "hotmail", "brevo", "sendinblue" or "custom".
	Service  string `mapstructure:"service"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// TLSMode is one of "auto", "starttls", "ssl" or "none".
	TLSMode            string `mapstructure:"tls_mode"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// MailgunConfig holds Mailgun messages API settings
type MailgunConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Domain  string `mapstructure:"domain"`
	BaseURL string `mapstructure:"base_url"`
}

// GmailEmailConfig holds Gmail API configuration
type GmailEmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
}

// CampaignConfig holds campaign template settings
type CampaignConfig struct {
	// TemplatesDir holds extra *.yaml templates loaded on top of the built-in ones.
	TemplatesDir string `mapstructure:"templates_dir"`
}

// Load reads configuration from .env, the config file and environment variables
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file when path is set.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/outreach")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.tls.enabled", false)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "outreach")
	v.SetDefault("database.user", "outreach")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Security defaults
	v.SetDefault("security.admin.password_hash", "")
	v.SetDefault("security.admin.token_secret", "")
	v.SetDefault("security.admin.token_ttl", "12h")
	v.SetDefault("security.admin.issuer", "outreach")

	v.SetDefault("security.trusted_proxies", []string{})

	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.form_limit", 5)
	v.SetDefault("security.rate_limiting.form_window", "10m")
	v.SetDefault("security.rate_limiting.login_limit", 5)
	v.SetDefault("security.rate_limiting.login_window", "15m")
	v.SetDefault("security.rate_limiting.admin_limit", 30)
	v.SetDefault("security.rate_limiting.admin_window", "1m")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	// Site defaults
	v.SetDefault("site.name", "Aapla Mahesh")
	v.SetDefault("site.tagline", "Student Rights Movement")
	v.SetDefault("site.website_url", "https://aaplamahesh.org")
	v.SetDefault("site.donate_url", "https://aaplamahesh.org/donate")
	v.SetDefault("site.admin_email", "")

	// Email defaults
	v.SetDefault("email.provider", "auto")
	v.SetDefault("email.order", []string{"brevo", "smtp", "mailgun", "gmail"})
	v.SetDefault("email.fallback", "auto")
	v.SetDefault("email.auto_reply", true)
	v.SetDefault("email.timeout", "15s")
	v.SetDefault("email.sender_name", "Aapla Mahesh")
	v.SetDefault("email.sender_address", "contact@aaplamahesh.org")

	v.SetDefault("email.brevo.api_key", "")
	v.SetDefault("email.brevo.base_url", "https://api.brevo.com/v3")

	v.SetDefault("email.smtp.service", "gmail")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 0)
	v.SetDefault("email.smtp.user", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.tls_mode", "auto")
	v.SetDefault("email.smtp.insecure_skip_verify", false)

	v.SetDefault("email.mailgun.api_key", "")
	v.SetDefault("email.mailgun.domain", "")
	v.SetDefault("email.mailgun.base_url", "https://api.mailgun.net")

	v.SetDefault("email.gmail.credentials_json", "")
	v.SetDefault("email.gmail.client_id", "")
	v.SetDefault("email.gmail.client_secret", "")
	v.SetDefault("email.gmail.refresh_token", "")

	// Campaign defaults
	v.SetDefault("campaign.templates_dir", "")
}
