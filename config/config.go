package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/broker"
	"github.com/sagarc03/edgeserve/cache"
	"github.com/sagarc03/edgeserve/keybackend"
	"github.com/sagarc03/edgeserve/s3store"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "EDGESERVE"

// Mask replaces secrets in Redacted output.
const Mask = "********"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for edgeserve.
type Config struct {
	Env     string            `mapstructure:"env" yaml:"env" validate:"required,oneof=dev development prod production"`
	Server  ServerConfig      `mapstructure:"server" yaml:"server"`
	Blob    BlobConfig        `mapstructure:"blob" yaml:"blob"`
	Names   keybackend.Config `mapstructure:"names" yaml:"names"`
	Cache   cache.Config      `mapstructure:"cache" yaml:"cache"`
	Broker  broker.Config     `mapstructure:"broker" yaml:"broker"`
	Metrics MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig         `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	ClientIPHeader  string        `mapstructure:"client_ip_header" yaml:"client_ip_header" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`
	TaskTimeout     time.Duration `mapstructure:"task_timeout" yaml:"task_timeout" validate:"min=0"`
}

// BlobConfig selects the object store.
type BlobConfig struct {
	Type string         `mapstructure:"type" yaml:"type" validate:"required,oneof=filesystem s3"`
	Path string         `mapstructure:"path" yaml:"path" validate:"required_if=Type filesystem"`
	S3   s3store.Config `mapstructure:"s3" yaml:"s3"`
}

// MetricsConfig holds the metrics listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
}

// IsProduction reports whether the production log format applies.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Redacted returns a copy of c with every secret masked.
func (c Config) Redacted() Config {
	mask := func(s *string) {
		if *s != "" {
			*s = Mask
		}
	}

	mask(&c.Broker.Secret)
	mask(&c.Blob.S3.AccessKeyID)
	mask(&c.Blob.S3.SecretAccessKey)
	mask(&c.Names.Redis.Password)
	mask(&c.Cache.Redis.Password)
	if c.Names.Database.DSN != "" && strings.Contains(c.Names.Database.DSN, "@") {
		mask(&c.Names.Database.DSN)
	}

	return c
}

// validate checks constraints spanning several fields.
func (c *Config) validate() error {
	if c.Blob.Type == "s3" && c.Blob.S3.Bucket == "" {
		return errors.New("blob.s3.bucket is required for the s3 blob store")
	}
	if (c.Names.Type == "sqlite" || c.Names.Type == "postgres") && c.Names.Database.DSN == "" {
		return fmt.Errorf("names.database.dsn is required for the %s name store", c.Names.Type)
	}
	if c.Broker.Enabled() && c.Broker.Secret == "" {
		return errors.New("broker.secret is required when broker.url is set")
	}
	return nil
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":         "server.port",
	"blob-type":    "blob.type",
	"blob-path":    "blob.path",
	"names-type":   "names.type",
	"names-dsn":    "names.database.dsn",
	"cache-type":   "cache.type",
	"broker-url":   "broker.url",
	"metrics-addr": "metrics.addr",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Every key needs a default so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 8787)
	v.SetDefault("server.client_ip_header", "cf-connecting-ip")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.task_timeout", 30*time.Second)

	v.SetDefault("blob.type", "filesystem")
	v.SetDefault("blob.path", "./data")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.prefix", "")
	v.SetDefault("blob.s3.region", "us-east-1")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
	v.SetDefault("blob.s3.force_path_style", false)

	v.SetDefault("names.type", "map")
	v.SetDefault("names.file", "")
	v.SetDefault("names.redis.addr", "localhost:6379")
	v.SetDefault("names.redis.username", "")
	v.SetDefault("names.redis.password", "")
	v.SetDefault("names.redis.db", 0)
	v.SetDefault("names.redis.prefix", keybackend.DefaultRedisPrefix)
	v.SetDefault("names.database.dsn", "edgeserve.db")
	v.SetDefault("names.database.tables.names", "display_names")
	v.SetDefault("names.database.auto_migrate", true)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", edgeserve.CacheTTL)
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.max_object_bytes", 8<<20)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", cache.DefaultRedisPrefix)

	v.SetDefault("broker.url", "")
	v.SetDefault("broker.secret", "")
	v.SetDefault("broker.timeout", broker.DefaultTimeout)

	v.SetDefault("metrics.addr", "")

	v.SetDefault("log.level", "info")
}

// LoadDotEnv loads environment variables from the given files. Variables that
// are already set win. With no files it reads ./.env if present.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
