package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	AvatarsPath    string
	BadWordsURL    string

	AdminUsername      string
	AdminPassword      string
	AdminSessionSecret string
	SessionDuration    time.Duration
	LoginMaxAttempts   int
	LoginLockout       time.Duration
	TrustedProxies     []string

	LLMTimeout    time.Duration
	DefaultRounds int

	RedisURL string

	LogLevel  string
	LogFormat string
	Debug     bool

	AWSRegion      string
	SESFromEmail   string
	SESFromName    string
	AdminEmail     string
	DigestCron     string
	BackupS3Bucket string
	BackupS3Prefix string
	BackupCron     string
}

// Load reads configuration from the environment, after merging any .env file
func Load() *Config {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./rpsarena.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		AvatarsPath:    getEnv("AVATARS_PATH", "./public/avatars"),
		BadWordsURL:    getEnv("BAD_WORDS_URL", ""),

		AdminUsername:      getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminSessionSecret: getEnv("ADMIN_SESSION_SECRET", ""),
		SessionDuration:    getEnvDuration("SESSION_DURATION", 24*time.Hour),
		LoginMaxAttempts:   getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockout:       getEnvDuration("LOGIN_LOCKOUT", 15*time.Minute),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		LLMTimeout:    getEnvDuration("LLM_TIMEOUT", 20*time.Second),
		DefaultRounds: getEnvInt("DEFAULT_ROUNDS", 5),

		RedisURL: getEnv("REDIS_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		Debug:     getEnvBool("DEBUG", false),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:   getEnv("SES_FROM_EMAIL", ""),
		SESFromName:    getEnv("SES_FROM_NAME", "RPS Arena"),
		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		DigestCron:     getEnv("DIGEST_CRON", "0 8 * * *"),
		BackupS3Bucket: getEnv("BACKUP_S3_BUCKET", ""),
		BackupS3Prefix: getEnv("BACKUP_S3_PREFIX", "backups/"),
		BackupCron:     getEnv("BACKUP_CRON", "0 3 * * *"),
	}
}

// ConfigureLogging applies the log level and format to the standard logrus logger
func (c *Config) ConfigureLogging() {
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	if c.Debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warnf("Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warnf("Invalid boolean for %s: %q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warnf("Invalid duration for %s: %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
