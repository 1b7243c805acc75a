package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	GoogleAudience  string
	AllowOrigins    []string
	LogstashTCPAddr string

	PasswordResetTTL time.Duration
	FrontendBaseURL  string

	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	MailSendTimeout time.Duration

	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOBucketListings string
	MinIOPublicURL      string

	ListingPhotoMaxBytes int64
	ListingPhotoMaxDim   int
	FFMPEGPath           string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	photoMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("LISTING_PHOTO_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		photoMax = v
	}

	photoMaxDim := 3840
	if v, err := strconv.Atoi(getenv("LISTING_PHOTO_MAX_DIMENSION", "3840")); err == nil && v > 0 {
		photoMaxDim = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		TokenTTL:        duration("TOKEN_TTL", 24*time.Hour),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		PasswordResetTTL: duration("PASSWORD_RESET_TTL", time.Hour),
		FrontendBaseURL:  getenv("FRONTEND_BASE_URL", ""),

		SMTPHost:        getenv("SMTP_HOST", ""),
		SMTPPort:        getenv("SMTP_PORT", ""),
		SMTPUsername:    getenv("SMTP_USERNAME", ""),
		SMTPPassword:    getenv("SMTP_PASSWORD", ""),
		SMTPFrom:        getenv("SMTP_FROM", ""),
		MailSendTimeout: duration("MAIL_SEND_TIMEOUT", 10*time.Second),

		MinIOEndpoint:       getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketListings: getenv("MINIO_BUCKET_LISTINGS", "atlas-listings"),
		MinIOPublicURL:      getenv("MINIO_PUBLIC_URL", ""),

		ListingPhotoMaxBytes: photoMax,
		ListingPhotoMaxDim:   photoMaxDim,
		FFMPEGPath:           getenv("FFMPEG_PATH", ""),
	}
}

func duration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		log.Printf("Warning: invalid duration for %s: %q, using %s", k, raw, d)
		return d
	}
	return parsed
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
