package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Safety thresholds accepted by the generative model
const (
	SafetyBlockNone           = "BLOCK_NONE"
	SafetyBlockOnlyHigh       = "BLOCK_ONLY_HIGH"
	SafetyBlockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyBlockLowAndAbove    = "BLOCK_LOW_AND_ABOVE"
)

// Config holds all application configuration
type Config struct {
	Env           string
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	AI            AIConfig
	HMIS          HMISConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Events        EventsConfig
	Notifications NotificationsConfig
	WhatsApp      WhatsAppConfig
	OTEL          OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	MaxUploadBytes int64
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	Enabled   bool
	KeyPrefix string // namespaces every key this service writes
}

// SafetyConfig holds per-category thresholds for the generative model
type SafetyConfig struct {
	HateSpeech       string
	DangerousContent string
	SexuallyExplicit string
	Harassment       string
}

// AIConfig holds generative AI configuration
type AIConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	UploadURL      string
	Timeout        time.Duration
	MaxUploadBytes int64
	MaxAttempts    int
	BaseDelay      time.Duration
	BackoffFactor  float64
	RateLimitRPS   float64
	RateLimitBurst int
	Temperature    float64
	Safety         SafetyConfig
}

// HMISConfig holds hospital management system configuration
type HMISConfig struct {
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	HospitalCacheTTL time.Duration
}

// AuthConfig holds token and OTP configuration
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
	OTPTTL    time.Duration
}

// StorageConfig holds document storage configuration
type StorageConfig struct {
	Provider     string
	LocalDir     string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3PathPrefix string
}

// EventsConfig holds event bus configuration
type EventsConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

// NotificationsConfig holds reminder job configuration
type NotificationsConfig struct {
	ReminderInterval time.Duration
	RetentionDays    int
}

// WhatsAppConfig holds OTP delivery configuration
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
}

// Enabled reports whether OTPs can be delivered over WhatsApp
func (c *WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 16<<20)),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "phr"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnvAsInt("REDIS_PORT", 6379),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			Enabled:   getEnvAsBool("REDIS_ENABLED", true),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "phr"),
		},
		AI: AIConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			UploadURL:      getEnv("GEMINI_UPLOAD_URL", "https://generativelanguage.googleapis.com/upload/v1beta/files"),
			Timeout:        getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
			MaxUploadBytes: int64(getEnvAsInt("AI_MAX_UPLOAD_BYTES", 20*1024*1024)),
			MaxAttempts:    getEnvAsInt("AI_MAX_ATTEMPTS", 3),
			BaseDelay:      getEnvAsDuration("AI_BASE_DELAY", time.Second),
			BackoffFactor:  getEnvAsFloat("AI_BACKOFF_FACTOR", 2.0),
			RateLimitRPS:   getEnvAsFloat("AI_RATE_LIMIT_RPS", 2),
			RateLimitBurst: getEnvAsInt("AI_RATE_LIMIT_BURST", 4),
			Temperature:    getEnvAsFloat("AI_TEMPERATURE", 0.2),
			Safety: SafetyConfig{
				HateSpeech:       getEnv("AI_SAFETY_HATE_SPEECH", SafetyBlockMediumAndAbove),
				DangerousContent: getEnv("AI_SAFETY_DANGEROUS_CONTENT", SafetyBlockMediumAndAbove),
				SexuallyExplicit: getEnv("AI_SAFETY_SEXUALLY_EXPLICIT", SafetyBlockMediumAndAbove),
				Harassment:       getEnv("AI_SAFETY_HARASSMENT", SafetyBlockMediumAndAbove),
			},
		},
		HMIS: HMISConfig{
			BaseURL:          getEnv("HMIS_BASE_URL", ""),
			APIKey:           getEnv("HMIS_API_KEY", ""),
			Timeout:          getEnvAsDuration("HMIS_TIMEOUT", 10*time.Second),
			HospitalCacheTTL: getEnvAsDuration("HMIS_HOSPITAL_CACHE_TTL", 15*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTIssuer: getEnv("JWT_ISSUER", "phr-backend"),
			JWTTTL:    getEnvAsDuration("JWT_TTL", 24*time.Hour),
			OTPTTL:    getEnvAsDuration("OTP_TTL", 10*time.Minute),
		},
		Storage: StorageConfig{
			Provider:     getEnv("STORAGE_PROVIDER", "local"),
			LocalDir:     getEnv("UPLOAD_FOLDER", "uploads"),
			S3Bucket:     getEnv("S3_BUCKET", ""),
			S3Region:     getEnv("AWS_REGION", "us-east-1"),
			S3Endpoint:   getEnv("S3_ENDPOINT", ""),
			S3PathPrefix: getEnv("S3_PATH_PREFIX", "documents"),
		},
		Events: EventsConfig{
			KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "phr.notifications"),
			KafkaGroupID: getEnv("KAFKA_GROUP_ID", "phr-backend"),
		},
		Notifications: NotificationsConfig{
			ReminderInterval: getEnvAsDuration("REMINDER_INTERVAL", time.Minute),
			RetentionDays:    getEnvAsInt("NOTIFICATION_RETENTION_DAYS", 30),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			BaseURL:       getEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com/v18.0"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "phr-backend"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.AI.Validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.Provider == "s3" && cfg.Storage.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_PROVIDER=s3")
	}

	return cfg, nil
}

// Available reports whether a credential for the generative model is present
func (c *AIConfig) Available() bool {
	return c.APIKey != ""
}

// Validate checks the AI configuration for malformed values
func (c *AIConfig) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("AI_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.BaseDelay < 0 {
		return fmt.Errorf("AI_BASE_DELAY must not be negative")
	}
	if c.BackoffFactor < 1 {
		return fmt.Errorf("AI_BACKOFF_FACTOR must be >= 1, got %v", c.BackoffFactor)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("AI_MAX_UPLOAD_BYTES must be positive")
	}
	for name, value := range map[string]string{
		"AI_SAFETY_HATE_SPEECH":       c.Safety.HateSpeech,
		"AI_SAFETY_DANGEROUS_CONTENT": c.Safety.DangerousContent,
		"AI_SAFETY_SEXUALLY_EXPLICIT": c.Safety.SexuallyExplicit,
		"AI_SAFETY_HARASSMENT":        c.Safety.Harassment,
	} {
		switch value {
		case SafetyBlockNone, SafetyBlockOnlyHigh, SafetyBlockMediumAndAbove, SafetyBlockLowAndAbove:
		default:
			return fmt.Errorf("%s has unsupported threshold %q", name, value)
		}
	}
	return nil
}

// Enabled reports whether the hospital system is configured
func (c *HMISConfig) Enabled() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
