package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Mail providers understood by the mail package.
const (
	MailProviderLog      = "log"
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
)

type Config struct {
	Env           string
	Port          int
	APIPrefix     string
	PublicBaseURL string

	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Mail       MailConfig
	Uploads    UploadConfig
	Workflow   WorkflowConfig
	Pagination PaginationConfig
	Dashboard  DashboardConfig
	Downloads  DownloadConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls the server-side session record and its cookie.
type SessionConfig struct {
	CookieName   string
	TTL          time.Duration
	SecureCookie bool
	Domain       string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MailConfig selects the outbound transport and the dispatch queue sizing.
type MailConfig struct {
	Provider       string
	FromName       string
	FromAddress    string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SendGridAPIKey string
	Workers        int
	Retries        int
	RetryDelay     time.Duration
	QueueSize      int
}

// UploadConfig bounds attachment uploads.
type UploadConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// WorkflowConfig pins the calendar used by time-windowed guards.
type WorkflowConfig struct {
	Timezone            string
	LogbookCutoffDay    time.Weekday
	LogbookCutoffHour   int
	ApprovalEmailsAsync bool
}

// PaginationConfig holds list defaults per resource family.
type PaginationConfig struct {
	SubmissionLimit   int
	NotificationLimit int
	MaxLimit          int
}

// DashboardConfig governs dashboard stats caching.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// DownloadConfig configures signed project download links.
type DownloadConfig struct {
	Secret string
	TTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicBaseURL = strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		TTL:          parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		SecureCookie: v.GetBool("SESSION_SECURE_COOKIE"),
		Domain:       v.GetString("SESSION_COOKIE_DOMAIN"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mail = MailConfig{
		Provider:       strings.ToLower(v.GetString("MAIL_PROVIDER")),
		FromName:       v.GetString("MAIL_FROM_NAME"),
		FromAddress:    v.GetString("MAIL_FROM_ADDRESS"),
		SMTPHost:       v.GetString("SMTP_HOST"),
		SMTPPort:       v.GetInt("SMTP_PORT"),
		SMTPUsername:   v.GetString("SMTP_USERNAME"),
		SMTPPassword:   v.GetString("SMTP_PASSWORD"),
		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		Workers:        v.GetInt("MAIL_WORKERS"),
		Retries:        v.GetInt("MAIL_RETRIES"),
		RetryDelay:     parseDuration(v.GetString("MAIL_RETRY_DELAY"), 5*time.Second),
		QueueSize:      v.GetInt("MAIL_QUEUE_SIZE"),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Uploads = UploadConfig{
		MaxFileSizeBytes: maxUpload,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOAD_ALLOWED_MIME_TYPES")),
	}

	cfg.Workflow = WorkflowConfig{
		Timezone:            v.GetString("WORKFLOW_TIMEZONE"),
		LogbookCutoffDay:    parseWeekday(v.GetString("LOGBOOK_CUTOFF_WEEKDAY"), time.Monday),
		LogbookCutoffHour:   clampHour(v.GetInt("LOGBOOK_CUTOFF_HOUR")),
		ApprovalEmailsAsync: v.GetBool("APPROVAL_EMAILS_ASYNC"),
	}

	cfg.Pagination = PaginationConfig{
		SubmissionLimit:   positiveOr(v.GetInt("PAGINATION_SUBMISSION_LIMIT"), 5),
		NotificationLimit: positiveOr(v.GetInt("PAGINATION_NOTIFICATION_LIMIT"), 10),
		MaxLimit:          positiveOr(v.GetInt("PAGINATION_MAX_LIMIT"), 100),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), time.Minute),
	}

	cfg.Downloads = DownloadConfig{
		Secret: v.GetString("DOWNLOAD_LINK_SECRET"),
		TTL:    parseDuration(v.GetString("DOWNLOAD_LINK_TTL"), 30*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "intern_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_COOKIE_NAME", "portal_sid")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_SECURE_COOKIE", false)
	v.SetDefault("SESSION_COOKIE_DOMAIN", "")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "intern-portal")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAIL_PROVIDER", MailProviderLog)
	v.SetDefault("MAIL_FROM_NAME", "Internship Portal")
	v.SetDefault("MAIL_FROM_ADDRESS", "no-reply@localhost")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_WORKERS", 2)
	v.SetDefault("MAIL_RETRIES", 3)
	v.SetDefault("MAIL_RETRY_DELAY", "5s")
	v.SetDefault("MAIL_QUEUE_SIZE", 1024)

	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("UPLOAD_ALLOWED_MIME_TYPES", "application/pdf,image/png,image/jpeg,image/gif,application/zip,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/msword,text/plain")

	v.SetDefault("WORKFLOW_TIMEZONE", "UTC")
	v.SetDefault("LOGBOOK_CUTOFF_WEEKDAY", "monday")
	v.SetDefault("LOGBOOK_CUTOFF_HOUR", 9)
	v.SetDefault("APPROVAL_EMAILS_ASYNC", true)

	v.SetDefault("PAGINATION_SUBMISSION_LIMIT", 5)
	v.SetDefault("PAGINATION_NOTIFICATION_LIMIT", 10)
	v.SetDefault("PAGINATION_MAX_LIMIT", 100)

	v.SetDefault("DASHBOARD_CACHE_TTL", "1m")

	v.SetDefault("DOWNLOAD_LINK_SECRET", "dev_download_secret")
	v.SetDefault("DOWNLOAD_LINK_TTL", "30m")
}

// Location resolves the workflow timezone, falling back to UTC.
func (w WorkflowConfig) Location() *time.Location {
	if w.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func parseWeekday(raw string, fallback time.Weekday) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sunday", "sun":
		return time.Sunday
	case "monday", "mon":
		return time.Monday
	case "tuesday", "tue":
		return time.Tuesday
	case "wednesday", "wed":
		return time.Wednesday
	case "thursday", "thu":
		return time.Thursday
	case "friday", "fri":
		return time.Friday
	case "saturday", "sat":
		return time.Saturday
	default:
		return fallback
	}
}

func clampHour(h int) int {
	if h < 0 {
		return 0
	}
	if h > 23 {
		return 23
	}
	return h
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
