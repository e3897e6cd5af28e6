package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Stock policies applied when an order decrements stock.
const (
	StockPolicyAllowNegative = "allow_negative"
	StockPolicyReject        = "reject"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Business  BusinessConfig
	Scheduler SchedulerConfig
	Redis     RedisConfig
	S3        S3Config
	Slack     SlackConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// BusinessConfig holds the pricing and billing rules of the distributor.
type BusinessConfig struct {
	AdRatePerWord    float64
	StockPolicy      string
	OrderBillDueDays int
	Location         *time.Location
}

type SchedulerConfig struct {
	SubscriptionSweepEnabled bool
	SubscriptionSweepCron    string
}

// RedisConfig is optional; an empty Host disables the sweep lock.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config is optional; an empty Bucket disables report archiving.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type SlackConfig struct {
	BotToken  string
	ChannelID string
}

// AdminConfig seeds the first user when the users table is empty.
type AdminConfig struct {
	Username string
	Password string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	location, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "admin"),
			Password:        getEnv("DB_PASSWORD", "1234"),
			DBName:          getEnv("DB_NAME", "bookcity"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt(getEnv("DB_MAX_OPEN_CONNS", "25"), 25),
			MaxIdleConns:    parseInt(getEnv("DB_MAX_IDLE_CONNS", "5"), 5),
			ConnMaxLifetime: parseDuration(getEnv("DB_CONN_MAX_LIFETIME", "1h"), time.Hour),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry: parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "12h"), 12*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Business: BusinessConfig{
			AdRatePerWord:    parseFloat(getEnv("AD_RATE_PER_WORD", "5.00"), 5.00),
			StockPolicy:      getEnv("STOCK_POLICY", StockPolicyAllowNegative),
			OrderBillDueDays: parseInt(getEnv("ORDER_BILL_DUE_DAYS", "0"), 0),
			Location:         location,
		},
		Scheduler: SchedulerConfig{
			SubscriptionSweepEnabled: getEnv("SUBSCRIPTION_SWEEP_ENABLED", "false") == "true",
			SubscriptionSweepCron:    getEnv("SUBSCRIPTION_SWEEP_CRON", "0 6 * * *"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-south-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Slack: SlackConfig{
			BotToken:  getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.Business.StockPolicy {
	case StockPolicyAllowNegative, StockPolicyReject:
	default:
		return fmt.Errorf("invalid STOCK_POLICY %q: want %q or %q",
			c.Business.StockPolicy, StockPolicyAllowNegative, StockPolicyReject)
	}
	if c.Business.AdRatePerWord < 0 {
		return fmt.Errorf("AD_RATE_PER_WORD must not be negative")
	}
	if c.Business.OrderBillDueDays < 0 {
		return fmt.Errorf("ORDER_BILL_DUE_DAYS must not be negative")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Enabled reports whether a Redis host was configured.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *S3Config) Enabled() bool {
	return c.Bucket != ""
}

func (c *SlackConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %.2f", s, fallback)
		return fallback
	}
	return f
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
