package app

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the admin front-end and its worker.
type Config struct {
	AppEnv             string        `envconfig:"APP_ENV" default:"development"`
	AppAddr            string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout  time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	APIBaseURL string        `envconfig:"API_BASE_URL" required:"true"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"20s"`

	// PGDSN enables the approval audit trail when set.
	PGDSN      string `envconfig:"PG_DSN"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"4"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	LookupCacheTTL time.Duration `envconfig:"LOOKUP_CACHE_TTL" default:"30m"`

	FallbackEmailDomain  string        `envconfig:"FALLBACK_EMAIL_DOMAIN" default:"company.com"`
	LCBGLockOnAnyYear    bool          `envconfig:"LCBG_LOCK_ON_ANY_YEAR" default:"true"`
	SecondaryNoticeDelay time.Duration `envconfig:"SECONDARY_NOTICE_DELAY" default:"1500ms"`

	// Identity headers set by the trusted auth proxy in front of the app.
	AuthUserHeader     string `envconfig:"AUTH_USER_HEADER" default:"X-Auth-User"`
	AuthUserNameHeader string `envconfig:"AUTH_USER_NAME_HEADER" default:"X-Auth-User-Name"`
	AuthRoleHeader     string `envconfig:"AUTH_ROLE_HEADER" default:"X-Auth-Role"`
	AuthRoleNameHeader string `envconfig:"AUTH_ROLE_NAME_HEADER" default:"X-Auth-Role-Name"`
	AuthTokenHeader    string `envconfig:"AUTH_TOKEN_HEADER" default:"X-Auth-Token"`

	// SMTPAddr enables mail delivery from the worker; mail is only logged when empty.
	SMTPAddr     string `envconfig:"SMTP_ADDR"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"no-reply@company.com"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`

	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
	LookupWarmupCron  string `envconfig:"LOOKUP_WARMUP_CRON" default:"15 1 * * *"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	u, err := url.Parse(strings.TrimSpace(c.APIBaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("api base url must be an absolute url")
	}
	if c.APITimeout <= 0 {
		return errors.New("api timeout must be positive")
	}
	if c.SMTPAddr != "" && !strings.Contains(c.SMTPFrom, "@") {
		return errors.New("smtp from must be an email address")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// AuditEnabled reports whether approval actions are persisted.
func (c *Config) AuditEnabled() bool {
	return c != nil && strings.TrimSpace(c.PGDSN) != ""
}
