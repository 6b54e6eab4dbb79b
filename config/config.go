package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Log      LogConfig      `envPrefix:"LOG_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Mail     MailConfig     `envPrefix:"MAIL_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"UniGrievance Gateway"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"grievance.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type MailConfig struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS" envDefault:"support@kluniversity.in"`
	FromName    string `env:"FROM_NAME" envDefault:"UniGrievance Support"`
}

type AuthConfig struct {
	AllowedDomains    []string `env:"ALLOWED_DOMAINS" envSeparator:"," envDefault:"kluniversity.in"`
	MaxResendAttempts int      `env:"MAX_RESEND_ATTEMPTS" envDefault:"3"`
	OTPExpiryMinutes  int      `env:"OTP_EXPIRY_MINUTES" envDefault:"10"`
	OTPCooldownSecs   int      `env:"OTP_COOLDOWN_SECONDS" envDefault:"60"`
	PasswordMinLength int      `env:"PASSWORD_MIN_LENGTH" envDefault:"6"`
	BcryptCost        int      `env:"BCRYPT_COST" envDefault:"10"`
}

// OTPExpiryWindow returns the passcode validity window as a duration.
func (c AuthConfig) OTPExpiryWindow() time.Duration {
	return time.Duration(c.OTPExpiryMinutes) * time.Minute
}

// OTPCooldownWindow returns the minimum gap between reissues as a duration.
func (c AuthConfig) OTPCooldownWindow() time.Duration {
	return time.Duration(c.OTPCooldownSecs) * time.Second
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return cfg.Validate()
}

func (c *Config) Validate() error {
	if len(c.Auth.AllowedDomains) == 0 {
		return fmt.Errorf("AUTH_ALLOWED_DOMAINS must list at least one domain")
	}
	for _, domain := range c.Auth.AllowedDomains {
		if strings.TrimSpace(domain) == "" {
			return fmt.Errorf("AUTH_ALLOWED_DOMAINS contains an empty entry")
		}
	}
	if c.Auth.MaxResendAttempts < 1 {
		return fmt.Errorf("AUTH_MAX_RESEND_ATTEMPTS must be at least 1, got %d", c.Auth.MaxResendAttempts)
	}
	if c.Auth.OTPExpiryMinutes <= 0 {
		return fmt.Errorf("AUTH_OTP_EXPIRY_MINUTES must be positive, got %d", c.Auth.OTPExpiryMinutes)
	}
	if c.Auth.OTPCooldownSecs < 0 {
		return fmt.Errorf("AUTH_OTP_COOLDOWN_SECONDS must not be negative, got %d", c.Auth.OTPCooldownSecs)
	}
	if c.Auth.PasswordMinLength < 1 {
		return fmt.Errorf("AUTH_PASSWORD_MIN_LENGTH must be at least 1, got %d", c.Auth.PasswordMinLength)
	}
	return nil
}
