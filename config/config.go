package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Admin      AdminConfig
	Razorpay   RazorpayConfig
	Mail       MailConfig
	Cloudinary CloudinaryConfig
}

type AppConfig struct {
	Port           string
	Env            string
	LogLevel       string
	RequestTimeout time.Duration
	CORSOrigin     string
	ImageBaseURL   string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// DSN returns the key/value connection string used by the gorm postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

// URL returns the postgres:// form expected by golang-migrate.
func (c DBConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// AdminConfig holds the single administrator account. PasswordHash is a bcrypt
// hash, generate one with `medique admin hash-password`.
type AdminConfig struct {
	Email        string
	PasswordHash string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
}

type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	SendTimeout time.Duration
}

// Enabled reports whether SMTP delivery is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.Username != ""
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether Cloudinary credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "4000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("CORS_ALLOWED_ORIGIN", "*")
	viper.SetDefault("IMAGE_BASE_URL", "http://localhost:4000/api/v1/images")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("RAZORPAY_CURRENCY", "INR")

	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 465)
	viper.SetDefault("MAIL_FROM_NAME", "Medique App")
	viper.SetDefault("MAIL_SEND_TIMEOUT", "15s")

	viper.SetDefault("CLOUDINARY_FOLDER", "medique")
}

func LoadConfig() (*Config, error) {
	// .env is optional, real environment variables take precedence
	_ = godotenv.Load()

	setDefaults()
	viper.AutomaticEnv()

	if viper.GetString("JWT_SECRET") == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	requestTimeout, err := time.ParseDuration(viper.GetString("APP_REQUEST_TIMEOUT"))
	if err != nil {
		requestTimeout = 30 * time.Second
	}

	sendTimeout, err := time.ParseDuration(viper.GetString("MAIL_SEND_TIMEOUT"))
	if err != nil {
		sendTimeout = 15 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			RequestTimeout: requestTimeout,
			CORSOrigin:     viper.GetString("CORS_ALLOWED_ORIGIN"),
			ImageBaseURL:   viper.GetString("IMAGE_BASE_URL"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			TimeZone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Admin: AdminConfig{
			Email:        viper.GetString("ADMIN_EMAIL"),
			PasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret: viper.GetString("RAZORPAY_KEY_SECRET"),
			Currency:  viper.GetString("RAZORPAY_CURRENCY"),
		},
		Mail: MailConfig{
			Host:        viper.GetString("SMTP_HOST"),
			Port:        viper.GetInt("SMTP_PORT"),
			Username:    viper.GetString("EMAIL_USER"),
			Password:    viper.GetString("EMAIL_PASS"),
			FromName:    viper.GetString("MAIL_FROM_NAME"),
			SendTimeout: sendTimeout,
		},
		Cloudinary: CloudinaryConfig{
			CloudName: viper.GetString("CLOUDINARY_NAME"),
			APIKey:    viper.GetString("CLOUDINARY_API_KEY"),
			APISecret: viper.GetString("CLOUDINARY_SECRET_KEY"),
			Folder:    viper.GetString("CLOUDINARY_FOLDER"),
		},
	}

	return config, nil
}
