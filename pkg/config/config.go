package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds every environment-driven setting of the API and the CLI.
type Config struct {
	Port         string
	AllowOrigins string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBTimeZone  string
	SQLitePath  string

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL    string
	EventsExchange string
	GRPCHealthPort string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
	S3PublicURL string

	PaymentBaseURL   string
	PaymentSecretKey string

	DefaultCommissionRate decimal.Decimal

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	return &Config{
		Port:         getEnv("PORT", "3000"),
		AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBTimeZone:  getEnv("DB_TIMEZONE", "UTC"),
		SQLitePath:  getEnv("SQLITE_PATH", "marketplace.db"),

		JWTSecret: getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "marketplace.events"),
		GRPCHealthPort: os.Getenv("GRPC_HEALTH_PORT"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    getEnv("S3_BUCKET", "marketplace-media"),
		S3UseSSL:    getEnvBool("S3_USE_SSL", false),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		PaymentBaseURL:   getEnv("PAYMENT_BASE_URL", "https://api.paystack.co"),
		PaymentSecretKey: os.Getenv("PAYMENT_SECRET_KEY"),

		DefaultCommissionRate: getEnvDecimal("DEFAULT_COMMISSION_RATE", decimal.NewFromInt(10)),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}
}

// AllowedOrigins returns the cors origin list normalised to fiber's comma format.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.AllowOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
