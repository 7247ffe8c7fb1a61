package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Mail       MailConfig
	Interviews InterviewConfig
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

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MailConfig configures outbound SMTP delivery for interview notifications.
type MailConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Username     string
	Password     string
	TLSPolicy    string
	FromAddress  string
	FromName     string
	SendTimeout  time.Duration
	MaxParallel  int
	DisplayTZ    string
	PortalURL    string
	SupportEmail string
}

// InterviewConfig tunes the interview pipeline and the reminder trigger.
type InterviewConfig struct {
	RemindersEnabled bool
	ReminderLead     time.Duration
	ReminderWindow   time.Duration
	TickInterval     time.Duration
	JobCacheTTL      time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

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

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxParallel := v.GetInt("MAIL_MAX_PARALLEL")
	if maxParallel <= 0 {
		maxParallel = 4
	}
	cfg.Mail = MailConfig{
		Enabled:      v.GetBool("MAIL_ENABLED"),
		Host:         v.GetString("SMTP_HOST"),
		Port:         v.GetInt("SMTP_PORT"),
		Username:     v.GetString("SMTP_USERNAME"),
		Password:     v.GetString("SMTP_PASSWORD"),
		TLSPolicy:    strings.ToLower(v.GetString("SMTP_TLS_POLICY")),
		FromAddress:  v.GetString("MAIL_FROM_ADDRESS"),
		FromName:     v.GetString("MAIL_FROM_NAME"),
		SendTimeout:  parseDuration(v.GetString("MAIL_SEND_TIMEOUT"), 10*time.Second),
		MaxParallel:  maxParallel,
		DisplayTZ:    v.GetString("MAIL_DISPLAY_TIMEZONE"),
		PortalURL:    strings.TrimRight(v.GetString("PORTAL_URL"), "/"),
		SupportEmail: v.GetString("MAIL_SUPPORT_ADDRESS"),
	}

	cfg.Interviews = InterviewConfig{
		RemindersEnabled: v.GetBool("ENABLE_INTERVIEW_REMINDERS"),
		ReminderLead:     parseDuration(v.GetString("INTERVIEW_REMINDER_LEAD"), 30*time.Minute),
		ReminderWindow:   parseDuration(v.GetString("INTERVIEW_REMINDER_TOLERANCE"), time.Minute),
		TickInterval:     parseDuration(v.GetString("INTERVIEW_REMINDER_INTERVAL"), time.Minute),
		JobCacheTTL:      parseDuration(v.GetString("JOB_CACHE_TTL"), 10*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "placement_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_TLS_POLICY", "opportunistic")
	v.SetDefault("MAIL_FROM_ADDRESS", "placements@localhost")
	v.SetDefault("MAIL_FROM_NAME", "Placement Cell")
	v.SetDefault("MAIL_SEND_TIMEOUT", "10s")
	v.SetDefault("MAIL_MAX_PARALLEL", 4)
	v.SetDefault("MAIL_DISPLAY_TIMEZONE", "UTC")
	v.SetDefault("PORTAL_URL", "http://localhost:3000")
	v.SetDefault("MAIL_SUPPORT_ADDRESS", "")

	v.SetDefault("ENABLE_INTERVIEW_REMINDERS", true)
	v.SetDefault("INTERVIEW_REMINDER_LEAD", "30m")
	v.SetDefault("INTERVIEW_REMINDER_TOLERANCE", "1m")
	v.SetDefault("INTERVIEW_REMINDER_INTERVAL", "1m")
	v.SetDefault("JOB_CACHE_TTL", "10m")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}

	return d
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
