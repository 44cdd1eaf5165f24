package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	SMTP      SMTPSettings      `mapstructure:"smtp"`
	OTP       OTPSettings       `mapstructure:"otp"`
	Captcha   CaptchaSettings   `mapstructure:"captcha"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the optional Redis backend. When Enabled is
// false the service keeps challenge sessions in process memory and skips
// the IP rate limiter.
type RedisSettings struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              int           `mapstructure:"db"`
	Password        string        `mapstructure:"password"`
	TLSEnabled      bool          `mapstructure:"tls_enabled"`
	ChallengePrefix string        `mapstructure:"challenge_prefix"`
	RateLimitPrefix string        `mapstructure:"rate_limit_prefix"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
}

// KafkaSettings configures the Kafka producer. With no brokers configured
// the service falls back to a stub publisher that only logs events.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// SMTPSettings configures outbound mail delivery.
type SMTPSettings struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// OTPSettings configures the password reset code lifecycle.
type OTPSettings struct {
	CodeTTL          time.Duration `mapstructure:"code_ttl"`
	RateLimitEnabled bool          `mapstructure:"rate_limit_enabled"`
}

// CaptchaSettings configures challenge rendering and session expiry.
type CaptchaSettings struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Length        int           `mapstructure:"length"`
	Width         int           `mapstructure:"width"`
	Height        int           `mapstructure:"height"`
	NoiseCount    int           `mapstructure:"noise_count"`
	Source        string        `mapstructure:"source"`
}

// RateLimitSettings configures the per-IP sliding window applied in front
// of the verification endpoints.
type RateLimitSettings struct {
	WindowDuration          time.Duration `mapstructure:"window_duration"`
	ForgotPasswordMaxPerIP  int           `mapstructure:"forgot_password_max_per_ip"`
	VerifyCodeMaxPerIP      int           `mapstructure:"verify_code_max_per_ip"`
	CaptchaGenerateMaxPerIP int           `mapstructure:"captcha_generate_max_per_ip"`
}

type TelemetrySettings struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	ServiceName    string `mapstructure:"service_name"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("VERIFY")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.enabled",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.challenge_prefix",
		"redis.rate_limit_prefix",
		"redis.dial_timeout",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"smtp.host",
		"smtp.port",
		"smtp.username",
		"smtp.password",
		"smtp.from_address",
		"smtp.from_name",
		"otp.code_ttl",
		"otp.rate_limit_enabled",
		"captcha.ttl",
		"captcha.sweep_interval",
		"captcha.length",
		"captcha.width",
		"captcha.height",
		"captcha.noise_count",
		"captcha.source",
		"rate_limit.window_duration",
		"rate_limit.forgot_password_max_per_ip",
		"rate_limit.verify_code_max_per_ip",
		"rate_limit.captcha_generate_max_per_ip",
		"telemetry.metrics_enabled",
		"telemetry.service_name",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "prolance-verification")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "prolance")
	v.SetDefault("postgres.password", "prolance_password")
	v.SetDefault("postgres.database", "prolance")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.challenge_prefix", "verify:captcha")
	v.SetDefault("redis.rate_limit_prefix", "verify:ratelimit")
	v.SetDefault("redis.dial_timeout", "5s")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "prolance")
	v.SetDefault("kafka.async", true)

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from_address", "no-reply@prolance.local")
	v.SetDefault("smtp.from_name", "Prolance")

	v.SetDefault("otp.code_ttl", "10m")
	v.SetDefault("otp.rate_limit_enabled", true)

	// Digits and letters that read ambiguously in the rendered image are
	// excluded from the answer alphabet.
	v.SetDefault("captcha.ttl", "10m")
	v.SetDefault("captcha.sweep_interval", "1m")
	v.SetDefault("captcha.length", 4)
	v.SetDefault("captcha.width", 200)
	v.SetDefault("captcha.height", 50)
	v.SetDefault("captcha.noise_count", 6)
	v.SetDefault("captcha.source", "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ")

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.forgot_password_max_per_ip", 5)
	v.SetDefault("rate_limit.verify_code_max_per_ip", 10)
	v.SetDefault("rate_limit.captcha_generate_max_per_ip", 20)

	v.SetDefault("telemetry.metrics_enabled", true)
	v.SetDefault("telemetry.service_name", "prolance-verification")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "VERIFY_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
