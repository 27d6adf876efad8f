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
	JWT       JWTSettings       `mapstructure:"jwt"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Lockout   LockoutSettings   `mapstructure:"lockout"`
	CSRF      CSRFSettings      `mapstructure:"csrf"`
	OAuth     OAuthSettings     `mapstructure:"oauth"`
	Internal  InternalSettings  `mapstructure:"internal"`
}

type AppSettings struct {
	Name        string `mapstructure:"name"`
	Env         string `mapstructure:"env"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// IsProduction reports whether the service runs with production hardening.
func (s AppSettings) IsProduction() bool {
	return s.Env == "production"
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

// RedisSettings configures the shared counter/token store connection.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// KafkaSettings configures the security event producer.
type KafkaSettings struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// JWTSettings configures session token signing. A single symmetric secret and
// a single algorithm; rotation means restarting with a new secret.
type JWTSettings struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Issuer   string        `mapstructure:"issuer"`
}

// ScopeSettings holds one rate-limit scope's window and budget.
type ScopeSettings struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// RateLimitSettings configures the per-scope limiters.
type RateLimitSettings struct {
	Login      ScopeSettings `mapstructure:"login"`
	Register   ScopeSettings `mapstructure:"register"`
	Email      ScopeSettings `mapstructure:"email"`
	Forgot     ScopeSettings `mapstructure:"forgot"`
	VerifyCode ScopeSettings `mapstructure:"verify_code"`
	General    ScopeSettings `mapstructure:"general"`
}

// LockoutSettings configures the failed-login lockout policy.
type LockoutSettings struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	LockDuration time.Duration `mapstructure:"lock_duration"`
}

// CSRFSettings configures anti-forgery token issuance.
type CSRFSettings struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// OAuthProviderSettings holds one provider's application credentials.
type OAuthProviderSettings struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

// OAuthSettings groups provider credentials and the state signing secret.
type OAuthSettings struct {
	StateSecret string                `mapstructure:"state_secret"`
	GitHub      OAuthProviderSettings `mapstructure:"github"`
	Google      OAuthProviderSettings `mapstructure:"google"`
	Yandex      OAuthProviderSettings `mapstructure:"yandex"`
}

// InternalSettings holds the API key trusted machine clients present.
type InternalSettings struct {
	APIKey string `mapstructure:"api_key"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("BOOLEAN")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.frontend_url",
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
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.key_prefix",
		"kafka.enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"jwt.secret",
		"jwt.token_ttl",
		"jwt.issuer",
		"rate_limit.login.max_requests",
		"rate_limit.login.window",
		"rate_limit.register.max_requests",
		"rate_limit.register.window",
		"rate_limit.email.max_requests",
		"rate_limit.email.window",
		"rate_limit.forgot.max_requests",
		"rate_limit.forgot.window",
		"rate_limit.verify_code.max_requests",
		"rate_limit.verify_code.window",
		"rate_limit.general.max_requests",
		"rate_limit.general.window",
		"lockout.max_attempts",
		"lockout.lock_duration",
		"csrf.token_ttl",
		"oauth.state_secret",
		"oauth.github.client_id",
		"oauth.github.client_secret",
		"oauth.google.client_id",
		"oauth.google.client_secret",
		"oauth.google.redirect_uri",
		"oauth.yandex.client_id",
		"oauth.yandex.client_secret",
		"internal.api_key",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required; the service cannot start without it")
	}
	if c.OAuth.StateSecret == "" {
		// Falling back to the JWT secret keeps single-secret deployments working.
		c.OAuth.StateSecret = c.JWT.Secret
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "boolean-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.frontend_url", "http://localhost:3000")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "boolean")
	v.SetDefault("postgres.password", "boolean_password")
	v.SetDefault("postgres.database", "boolean")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.key_prefix", "boolean")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "accounts")

	v.SetDefault("jwt.token_ttl", "168h")
	v.SetDefault("jwt.issuer", "boolean-api")

	v.SetDefault("rate_limit.login.max_requests", 5)
	v.SetDefault("rate_limit.login.window", "15m")
	v.SetDefault("rate_limit.register.max_requests", 3)
	v.SetDefault("rate_limit.register.window", "1h")
	v.SetDefault("rate_limit.email.max_requests", 1)
	v.SetDefault("rate_limit.email.window", "1m")
	v.SetDefault("rate_limit.forgot.max_requests", 3)
	v.SetDefault("rate_limit.forgot.window", "1h")
	v.SetDefault("rate_limit.verify_code.max_requests", 10)
	v.SetDefault("rate_limit.verify_code.window", "15m")
	v.SetDefault("rate_limit.general.max_requests", 100)
	v.SetDefault("rate_limit.general.window", "1m")

	v.SetDefault("lockout.max_attempts", 5)
	v.SetDefault("lockout.lock_duration", "30m")

	v.SetDefault("csrf.token_ttl", "1h")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "BOOLEAN_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
