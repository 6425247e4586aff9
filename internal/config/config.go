package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string

	// SecretKey signs password-reset tokens.
	SecretKey string

	// APITokenMaxAge is the lifetime in seconds of issued bearer tokens.
	APITokenMaxAge int
	// ResetTokenMaxAge is the lifetime in seconds of password-reset tokens.
	ResetTokenMaxAge int

	// RedisURL backs the task queue and, when SearchURL is empty, the
	// search index as well.
	RedisURL string
	// SearchURL points at the RediSearch instance. Empty disables search:
	// indexing and queries degrade to no-ops.
	SearchURL string

	MailServer   string
	MailPort     int
	MailUseTLS   bool
	MailUsername string
	MailPassword string
	AdminEmail   string

	// Export archive storage (any S3-compatible endpoint). All four must be
	// set or exports fall back to attachment-only mail.
	ExportEndpoint  string
	ExportAccessKey string
	ExportSecretKey string
	ExportBucket    string

	PostsPerPage int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	apiTokenMaxAge, err := strconv.Atoi(os.Getenv("API_TOKEN_MAX_AGE"))
	if err != nil || apiTokenMaxAge <= 0 {
		apiTokenMaxAge = 3600
	}

	resetTokenMaxAge, err := strconv.Atoi(os.Getenv("RESET_TOKEN_MAX_AGE"))
	if err != nil || resetTokenMaxAge <= 0 {
		resetTokenMaxAge = 600
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	mailPort, err := strconv.Atoi(os.Getenv("MAIL_PORT"))
	if err != nil || mailPort <= 0 {
		mailPort = 25
	}

	postsPerPage, err := strconv.Atoi(os.Getenv("POSTS_PER_PAGE"))
	if err != nil || postsPerPage <= 0 {
		postsPerPage = 25
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		ServerPort: serverPort,

		SecretKey: os.Getenv("SECRET_KEY"),

		APITokenMaxAge:   apiTokenMaxAge,
		ResetTokenMaxAge: resetTokenMaxAge,

		RedisURL:  redisURL,
		SearchURL: os.Getenv("SEARCH_URL"),

		MailServer:   os.Getenv("MAIL_SERVER"),
		MailPort:     mailPort,
		MailUseTLS:   os.Getenv("MAIL_USE_TLS") != "",
		MailUsername: os.Getenv("MAIL_USERNAME"),
		MailPassword: os.Getenv("MAIL_PASSWORD"),
		AdminEmail:   os.Getenv("ADMIN_EMAIL"),

		ExportEndpoint:  os.Getenv("EXPORT_S3_ENDPOINT"),
		ExportAccessKey: os.Getenv("EXPORT_S3_ACCESS_KEY"),
		ExportSecretKey: os.Getenv("EXPORT_S3_SECRET_KEY"),
		ExportBucket:    os.Getenv("EXPORT_S3_BUCKET"),

		PostsPerPage: postsPerPage,
	}, nil
}
