package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const (
	RoleListen  = "listen"
	RoleHandler = "handler"

	DeliveryDirect = "direct"
	DeliveryQueue  = "queue"
)

type Config struct {
	Server ServerConfig
	KV     KVConfig
	JWT    JWTConfig
	SMTP   SMTPConfig
	Mail   MailConfig
	Worker WorkerConfig
}

type ServerConfig struct {
	Host       string
	Port       int
	Env        string
	Role       string
	CORSOrigin string
}

type KVConfig struct {
	URL   string
	Token string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type MailConfig struct {
	AdminEmail    string
	PublicBaseURL string
	Delivery      string
}

type WorkerConfig struct {
	Concurrency int
}

// RedisOptions parses the store URL and applies the token as password when set.
func (k *KVConfig) RedisOptions() (*redis.Options, error) {
	opts, err := redis.ParseURL(k.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing KV_URL: %w", err)
	}
	if k.Token != "" {
		opts.Password = k.Token
	}
	return opts, nil
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (s *SMTPConfig) Enabled() bool {
	return s.Host != ""
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

// ListenLocally reports whether the process should bind a port itself
// rather than being mounted by a managed host.
func (s *ServerConfig) ListenLocally() bool {
	return s.Role != RoleHandler
}

func (m *MailConfig) Queued() bool {
	return m.Delivery == DeliveryQueue
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 5000)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	v.SetDefault("KV_URL", "redis://localhost:6379")
	v.SetDefault("KV_TOKEN", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24*7)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_DELIVERY", DeliveryDirect)
	v.SetDefault("WORKER_CONCURRENCY", 10)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	role := v.GetString("SERVER_ROLE")
	if role == "" {
		role = RoleListen
		if v.GetString("VERCEL") != "" {
			role = RoleHandler
		}
	}

	from := v.GetString("SMTP_FROM")
	if from == "" {
		from = v.GetString("SMTP_USER")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:       v.GetString("SERVER_HOST"),
			Port:       v.GetInt("SERVER_PORT"),
			Env:        v.GetString("SERVER_ENV"),
			Role:       role,
			CORSOrigin: v.GetString("CORS_ORIGIN"),
		},
		KV: KVConfig{
			URL:   v.GetString("KV_URL"),
			Token: v.GetString("KV_TOKEN"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     from,
		},
		Mail: MailConfig{
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
			Delivery:      v.GetString("MAIL_DELIVERY"),
		},
		Worker: WorkerConfig{
			Concurrency: v.GetInt("WORKER_CONCURRENCY"),
		},
	}

	if cfg.Server.Role != RoleListen && cfg.Server.Role != RoleHandler {
		return nil, fmt.Errorf("invalid SERVER_ROLE %q", cfg.Server.Role)
	}
	if cfg.Mail.Delivery != DeliveryDirect && cfg.Mail.Delivery != DeliveryQueue {
		return nil, fmt.Errorf("invalid MAIL_DELIVERY %q", cfg.Mail.Delivery)
	}

	return cfg, nil
}
