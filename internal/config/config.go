// Package config carrega a configuração do gateway: defaults, arquivo YAML
// opcional, .env e variáveis TOOLKIT_*.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"toolkit-gateway/middleware/ratelimit"
)

const EnvPrefix = "TOOLKIT"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Burst    BurstConfig    `mapstructure:"burst"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Database DatabaseConfig `mapstructure:"database"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Refine   RefineConfig   `mapstructure:"refine"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	ListenAddr         string        `mapstructure:"listen_addr"`
	TrustXFF           bool          `mapstructure:"trust_xff"`
	KeyHeader          string        `mapstructure:"key_header"`
	TrustedProxies     []string      `mapstructure:"trusted_proxies"` // IPs/CIDRs; só vale com trust_xff
	CORSOrigins        []string      `mapstructure:"cors_origins"`
	ConcurrencyMax     int           `mapstructure:"concurrency_max"`
	ConcurrencyTimeout time.Duration `mapstructure:"concurrency_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type BurstConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RPS        float64       `mapstructure:"rps"`
	Burst      int           `mapstructure:"burst"`
	RetryAfter time.Duration `mapstructure:"retry_after"`
	AddHeaders bool          `mapstructure:"add_headers"`
}

type QuotaConfig struct {
	DailyLimit int    `mapstructure:"daily_limit"`
	Timezone   string `mapstructure:"timezone"`
	// Backend: memory | redis | sql
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type StatsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Backend: memory | redis | prometheus
	Backend   string        `mapstructure:"backend"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
	Bucket    string        `mapstructure:"bucket"`
	TrackKeys bool          `mapstructure:"track_keys"`
}

type DatabaseConfig struct {
	// Driver: sqlite | mysql
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ContactConfig struct {
	// Backend: sql | memory
	Backend string `mapstructure:"backend"`
}

type RefineConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type MailConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.trust_xff", false)
	v.SetDefault("server.key_header", "")
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.concurrency_max", 100)
	v.SetDefault("server.concurrency_timeout", time.Duration(0))
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("burst.enabled", true)
	v.SetDefault("burst.rps", 5.0)
	v.SetDefault("burst.burst", 10)
	v.SetDefault("burst.retry_after", time.Second)
	v.SetDefault("burst.add_headers", false)

	v.SetDefault("quota.daily_limit", 20)
	v.SetDefault("quota.timezone", "UTC")
	v.SetDefault("quota.backend", "memory")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "toolkit:usage")

	v.SetDefault("stats.enabled", true)
	v.SetDefault("stats.backend", "prometheus")
	v.SetDefault("stats.prefix", "toolkit:stats")
	v.SetDefault("stats.ttl", 24*time.Hour)
	v.SetDefault("stats.bucket", "minute")
	v.SetDefault("stats.track_keys", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "toolkit.db")

	v.SetDefault("contact.backend", "sql")

	v.SetDefault("refine.api_key", "")
	v.SetDefault("refine.model", "gemini-2.0-flash")
	v.SetDefault("refine.timeout", 30*time.Second)
	v.SetDefault("refine.temperature", 0.7)
	v.SetDefault("refine.max_output_tokens", 0)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load lê a configuração. path vazio procura configs/config.yaml; a ausência
// do arquivo não é erro.
func Load(path string) (*Config, error) {
	// .env só preenche o que ainda não está no ambiente
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("refine.api_key", EnvPrefix+"_REFINE_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// IMPORTANTE: com RPS abaixo de 1 o burst padrão deixa passar uma rajada
	// grande antes do limite aparecer; nesse caso o padrão cai para 1.
	if !isExplicit(v, "burst.burst") {
		if rps := v.GetFloat64("burst.rps"); rps > 0 && rps < 1 {
			v.Set("burst.burst", 1)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// isExplicit diz se a chave veio de arquivo ou ambiente, e não só do default.
func isExplicit(v *viper.Viper, key string) bool {
	if v.InConfig(key) {
		return true
	}
	envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	_, ok := os.LookupEnv(envKey)
	return ok
}

func (c *Config) Validate() error {
	var errs []error
	if c.Quota.DailyLimit <= 0 {
		errs = append(errs, errors.New("quota.daily_limit must be > 0"))
	}
	if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("quota.timezone: %w", err))
	}
	if c.Burst.Enabled {
		if c.Burst.RPS <= 0 {
			errs = append(errs, errors.New("burst.rps must be > 0"))
		}
		if c.Burst.Burst <= 0 {
			errs = append(errs, errors.New("burst.burst must be > 0"))
		}
	}
	if _, err := ratelimit.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("server.trusted_proxies: %w", err))
	}
	if c.Server.ConcurrencyMax < 0 {
		errs = append(errs, errors.New("server.concurrency_max must be >= 0"))
	}

	switch c.Quota.Backend {
	case "memory", "sql":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("redis.addr is required when quota.backend=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("quota.backend: unknown backend %q", c.Quota.Backend))
	}

	if c.Stats.Enabled {
		switch c.Stats.Backend {
		case "memory", "prometheus":
		case "redis":
			if strings.TrimSpace(c.Redis.Addr) == "" {
				errs = append(errs, errors.New("redis.addr is required when stats.backend=redis"))
			}
		default:
			errs = append(errs, fmt.Errorf("stats.backend: unknown backend %q", c.Stats.Backend))
		}
	}

	switch c.Contact.Backend {
	case "memory", "sql":
	default:
		errs = append(errs, fmt.Errorf("contact.backend: unknown backend %q", c.Contact.Backend))
	}
	if c.Quota.Backend == "sql" || c.Contact.Backend == "sql" {
		switch c.Database.Driver {
		case "sqlite", "mysql":
		default:
			errs = append(errs, fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver))
		}
		if strings.TrimSpace(c.Database.DSN) == "" {
			errs = append(errs, errors.New("database.dsn is required for sql backends"))
		}
	}
	return errors.Join(errs...)
}

// Location devolve o fuso onde o dia da cota vira.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Quota.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RequireModel falha quando não há chave da API do modelo; usado pelo serve.
func (c *Config) RequireModel() error {
	if strings.TrimSpace(c.Refine.APIKey) == "" {
		return errors.New("refine.api_key (or GEMINI_API_KEY) is required")
	}
	return nil
}
