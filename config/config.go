package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Stripe     StripeConfig
	Twilio     TwilioConfig
	Resend     ResendConfig
	Cloudinary CloudinaryConfig
	Pricing    PricingConfig
	Admin      AdminSeedConfig
}

// AdminSeedConfig creates the first back-office account on an empty database.
type AdminSeedConfig struct {
	Email    string
	Password string
}

type ServerConfig struct {
	Port         string
	Env          string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	// AllowedStaffEmails restricts Google sign-in to back-office staff.
	AllowedStaffEmails []string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// CNYExchangeRate converts the stored USD amount when a customer pays in CNY.
	CNYExchangeRate float64
}

type TwilioConfig struct {
	AccountSID       string
	AuthToken        string
	WhatsAppNumber   string
	VerifyServiceSID string
}

type ResendConfig struct {
	APIKey       string
	FromAddress  string
	SupportEmail string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type PricingConfig struct {
	SingleEntryUSD         float64
	MultipleEntrySurcharge float64
	UrgentSurcharge        float64
}

// Load reads config.yaml (if present) and VISA_* environment variables on top
// of the defaults below.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("VISA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("config: failed to read config file: %v", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			Env:          v.GetString("server.env"),
			LogLevel:     v.GetString("server.log_level"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		JWT: JWTConfig{
			AccessSecret:  v.GetString("jwt.access_secret"),
			RefreshSecret: v.GetString("jwt.refresh_secret"),
			AccessExpiry:  v.GetDuration("jwt.access_expiry"),
			RefreshExpiry: v.GetDuration("jwt.refresh_expiry"),
			Issuer:        v.GetString("jwt.issuer"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     v.GetString("oauth.google_client_id"),
			GoogleClientSecret: v.GetString("oauth.google_client_secret"),
			GoogleRedirectURL:  v.GetString("oauth.google_redirect_url"),
			AllowedStaffEmails: v.GetStringSlice("oauth.allowed_staff_emails"),
		},
		Stripe: StripeConfig{
			SecretKey:       v.GetString("stripe.secret_key"),
			WebhookSecret:   v.GetString("stripe.webhook_secret"),
			CNYExchangeRate: v.GetFloat64("stripe.cny_exchange_rate"),
		},
		Twilio: TwilioConfig{
			AccountSID:       v.GetString("twilio.account_sid"),
			AuthToken:        v.GetString("twilio.auth_token"),
			WhatsAppNumber:   v.GetString("twilio.whatsapp_number"),
			VerifyServiceSID: v.GetString("twilio.verify_service_sid"),
		},
		Resend: ResendConfig{
			APIKey:       v.GetString("resend.api_key"),
			FromAddress:  v.GetString("resend.from_address"),
			SupportEmail: v.GetString("resend.support_email"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("cloudinary.cloud_name"),
			APIKey:    v.GetString("cloudinary.api_key"),
			APISecret: v.GetString("cloudinary.api_secret"),
		},
		Pricing: PricingConfig{
			SingleEntryUSD:         v.GetFloat64("pricing.single_entry_usd"),
			MultipleEntrySurcharge: v.GetFloat64("pricing.multiple_entry_surcharge"),
			UrgentSurcharge:        v.GetFloat64("pricing.urgent_surcharge"),
		},
		Admin: AdminSeedConfig{
			Email:    v.GetString("admin.seed_email"),
			Password: v.GetString("admin.seed_password"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "root:@tcp(localhost:3306)/vietvisa?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.access_secret", "change-me-in-production")
	v.SetDefault("jwt.refresh_secret", "change-me-refresh")
	v.SetDefault("jwt.access_expiry", 15*time.Minute)
	v.SetDefault("jwt.refresh_expiry", 168*time.Hour)
	v.SetDefault("jwt.issuer", "vietvisa")

	v.SetDefault("stripe.cny_exchange_rate", 7.2)

	v.SetDefault("twilio.whatsapp_number", "+14155238886")

	v.SetDefault("resend.from_address", "Vietnam Fast Visa <noreply@vietnamfastvisa.com>")
	v.SetDefault("resend.support_email", "support@vietnamfastvisa.com")

	v.SetDefault("pricing.single_entry_usd", 149)
	v.SetDefault("pricing.multiple_entry_surcharge", 30)
	v.SetDefault("pricing.urgent_surcharge", 50)
}
