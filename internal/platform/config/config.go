// Package config loads the immutable runtime configuration of the server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	minJWTKeyLength = 32
)

// Config is built once by Load and handed to constructors; nothing mutates it afterwards.
type Config struct {
	Environment    string
	APIPort        string
	LogLevel       string
	RequestTimeout time.Duration

	JWTKey     []byte
	JWTExp     time.Duration
	BcryptCost int

	StorageDriver   string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSslMode       string
	DBConnStr       string
	DBMaxOpenConns  int
	DBRunMigrations bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NotificationQueueName string

	DirectoryBaseURL  string
	DirectoryTimeout  time.Duration
	DirectoryCacheTTL time.Duration
}

// Load reads an optional .env file and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var env envParser
	cfg := &Config{
		Environment:    getEnv("APP_ENV", "development"),
		APIPort:        getEnv("API_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: env.getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),

		JWTKey:     []byte(getEnv("JWT_SECRET", "")),
		JWTExp:     env.getEnvAsDuration("JWT_EXPIRATION", 15*time.Minute),
		BcryptCost: env.getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),

		StorageDriver:   getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "admin"),
		DBName:          getEnv("DB_NAME", "snippetbox"),
		DBSslMode:       getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:  env.getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBRunMigrations: env.getEnvAsBool("DB_RUN_MIGRATIONS", true),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       env.getEnvAsInt("REDIS_DB", 0),

		NotificationQueueName: getEnv("NOTIFICATION_QUEUE_NAME", "notifications_queue"),

		DirectoryBaseURL:  getEnv("DIRECTORY_BASE_URL", "https://jsonplaceholder.typicode.com"),
		DirectoryTimeout:  env.getEnvAsDuration("DIRECTORY_TIMEOUT", 5*time.Second),
		DirectoryCacheTTL: env.getEnvAsDuration("DIRECTORY_CACHE_TTL", 5*time.Minute),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	if err := errors.Join(append(env.errs, cfg.validate())...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if len(c.JWTKey) < minJWTKeyLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTKeyLength))
	}
	if c.JWTExp <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.StorageDriver != StorageDriverPostgres && c.StorageDriver != StorageDriverMemory {
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.NotificationQueueName == "" {
		errs = append(errs, errors.New("NOTIFICATION_QUEUE_NAME must not be empty"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// envParser collects parse failures so Load reports every bad key at once.
// Unset or empty keys take the fallback.
type envParser struct {
	errs []error
}

func (p *envParser) getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, valueStr))
		return fallback
	}
	return value
}

func (p *envParser) getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, valueStr))
		return fallback
	}
	return value
}

func (p *envParser) getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, valueStr))
		return fallback
	}
	return value
}
