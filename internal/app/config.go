package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"acidbase/internal/crypto"
	"acidbase/internal/equilibrium"
	"acidbase/internal/logging"
	"acidbase/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. ACIDBASE_SERVER_ADDR.
const EnvPrefix = "ACIDBASE"

// Config holds runtime wiring options for the server and the CLI.
type Config struct {
	Home      string          `mapstructure:"home"` // e.g. $HOME/.acidbase
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Solver    SolverConfig    `mapstructure:"solver"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Client    ClientConfig    `mapstructure:"client"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	TrustProxy      bool          `mapstructure:"trust_proxy"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // file or sqlite
	Path   string `mapstructure:"path"`   // defaults to <home>/data
}

type AuthConfig struct {
	JWTSecret string                `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration         `mapstructure:"token_ttl"`
	Password  crypto.PasswordParams `mapstructure:"password"`
}

type SolverConfig struct {
	DefaultSamples int `mapstructure:"default_samples"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type ClientConfig struct {
	Server  string        `mapstructure:"server"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	pw := crypto.DefaultPasswordParams()

	v.SetDefault("home", "")
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.max_body_bytes", 100<<10)
	v.SetDefault("storage.driver", store.DriverFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("auth.password.time", pw.Time)
	v.SetDefault("auth.password.memory", pw.Memory)
	v.SetDefault("auth.password.threads", pw.Threads)
	v.SetDefault("solver.default_samples", equilibrium.DefaultSampleCount)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatJSON)
	v.SetDefault("ratelimit.requests", 100)
	v.SetDefault("ratelimit.window", 15*time.Minute)
	v.SetDefault("client.server", "http://localhost:5000")
	v.SetDefault("client.timeout", 30*time.Second)
}

// NewViper returns a viper instance with defaults and ACIDBASE_* environment
// overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (when set, or <home>/config.yaml when present) into v
// and decodes the result. Flags bound to v before Load take precedence over
// the environment, which takes precedence over the file.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		home, err := resolveHome(v.GetString("home"))
		if err != nil {
			return Config{}, err
		}
		v.AddConfigPath(home)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	home, err := resolveHome(cfg.Home)
	if err != nil {
		return Config{}, err
	}
	cfg.Home = home
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(cfg.Home, "data")
	}
	return cfg, cfg.Validate()
}

func resolveHome(home string) (string, error) {
	if home != "" {
		return home, nil
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".acidbase"), nil
}

// Validate checks settings shared by every command.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.New(c.Log.Level, c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	if n := c.Solver.DefaultSamples; n < equilibrium.MinSampleCount || n > equilibrium.MaxSampleCount {
		errs = append(errs, fmt.Errorf("solver.default_samples must be between %d and %d",
			equilibrium.MinSampleCount, equilibrium.MaxSampleCount))
	}
	if c.Client.Timeout <= 0 {
		errs = append(errs, errors.New("client.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateServer checks the settings only the API server needs.
func (c Config) ValidateServer() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Storage.Driver != store.DriverFile && c.Storage.Driver != store.DriverSQLite {
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q", store.DriverFile, store.DriverSQLite))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("auth.jwt_secret is required (set %s_AUTH_JWT_SECRET)", EnvPrefix))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.Password.Time == 0 || c.Auth.Password.Memory == 0 || c.Auth.Password.Threads == 0 {
		errs = append(errs, errors.New("auth.password parameters must be positive"))
	}
	if c.RateLimit.Requests < 0 || c.RateLimit.Window < 0 {
		errs = append(errs, errors.New("ratelimit settings must not be negative"))
	}
	return errors.Join(errs...)
}
