package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBLogSQL   bool

	SmsApiKey   string
	SmsApiUrl   string
	SmsSenderID string

	SendgridApiKey  string
	EmailSender     string
	EmailSenderName string

	PdfRenderURL string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	UploadDir      string

	RedisURL      string
	RedisPassword string

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUsername string
	ESPassword string

	DefaultLanguage  string
	SchedulerEnabled bool
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "learnhub"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBLogSQL:   getEnvBool("DB_LOG_SQL", false),

		SmsApiKey:   getEnv("SMS_API_KEY", ""),
		SmsApiUrl:   getEnv("SMS_API_URL", "https://www.fast2sms.com/dev/bulkV2"),
		SmsSenderID: getEnv("SMS_SENDER_ID", "LRNHUB"),

		SendgridApiKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@learnhub.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "LearnHub"),

		PdfRenderURL: getEnv("PDF_RENDER_URL", ""),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "learnhub"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		UploadDir:      getEnv("UPLOAD_DIR", "./public/uploads"),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "learnhub-events"),

		ESURL:      getEnv("ES_URL", ""),
		ESUsername: getEnv("ES_USERNAME", "elastic"),
		ESPassword: getEnv("ES_PASSWORD", ""),

		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "English"),
		SchedulerEnabled: getEnvBool("SCHEDULER_ENABLED", true),
	}

	// Validate critical configuration
	if cfg.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if cfg.SendgridApiKey == "" {
		log.Println("Warning: SENDGRID_API_KEY is empty. Emails will only be logged.")
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
