package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      *AppConfig
	Database *DatabaseConfig
	Redis    *RedisConfig
	Mongo    *MongoConfig
	SMTP     *SMTPConfig
	Security *SecurityConfig
	Storage  *StorageConfig
	Maps     *MapsConfig
	Rules    *RulesConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        string
	BaseURL     string
	LogLevel    string
	LogFormat   string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
	AdminEmail      string
	AdminPassword   string
}

type RedisConfig struct {
	URL string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

type SecurityConfig struct {
	JWTSecret          string
	JWTTTL             time.Duration
	BcryptCost         int
	PasswordResetTTL   time.Duration
	CORSAllowedOrigins []string
}

type StorageConfig struct {
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	Bucket       string
	UploadDir    string
	MaxPhotoSize int64
}

type MapsConfig struct {
	APIKey   string
	Region   string
	CacheTTL time.Duration
}

// RulesConfig holds the marketplace business constants.
type RulesConfig struct {
	WelcomeCredits    int
	CommissionCredits int
}

func Load() *Config {
	return &Config{
		App:      loadAppConfig(),
		Database: loadDatabaseConfig(),
		Redis:    &RedisConfig{URL: getEnv("REDIS_URL", "")},
		Mongo:    loadMongoConfig(),
		SMTP:     loadSMTPConfig(),
		Security: loadSecurityConfig(),
		Storage:  loadStorageConfig(),
		Maps:     loadMapsConfig(),
		Rules:    loadRulesConfig(),
	}
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", "EcoRide"),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnv("DB_PORT", "5432"),
		User:            getEnv("DB_USER", "ecoride"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "ecoride"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		MigrationsDir:   getEnv("DB_MIGRATIONS_DIR", "internal/database/migrations"),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@ecoride.fr"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
	}
}

func loadMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        getEnv("MONGO_URI", ""),
		Database:   getEnv("MONGO_DATABASE", "ecoride"),
		Collection: getEnv("MONGO_JOURNAL_COLLECTION", "journal"),
	}
}

func loadSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnv("SMTP_PORT", "587"),
		From:     getEnv("EMAIL_FROM", ""),
		Password: getEnv("EMAIL_PASSWORD", ""),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getEnvAsDuration("JWT_TTL", 24*time.Hour),
		BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
		PasswordResetTTL:   getEnvAsDuration("PASSWORD_RESET_TTL", time.Hour),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		AWSRegion:    getEnv("AWS_REGION", ""),
		AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Bucket:       getEnv("AWS_S3_BUCKET", ""),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		MaxPhotoSize: int64(getEnvAsInt("MAX_PHOTO_BYTES", 2<<20)),
	}
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		APIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
		Region:   getEnv("GOOGLE_MAPS_REGION", "fr"),
		CacheTTL: getEnvAsDuration("GEOCODING_CACHE_TTL", 24*time.Hour),
	}
}

func loadRulesConfig() *RulesConfig {
	return &RulesConfig{
		WelcomeCredits:    getEnvAsInt("WELCOME_CREDITS", 20),
		CommissionCredits: getEnvAsInt("COMMISSION_CREDITS", 2),
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
