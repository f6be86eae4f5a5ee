package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"eventky/internal/infrastructure/runtime"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultEnv             = EnvLocal
	defaultLogLevel        = "info"
	defaultHomeserverID    = "8um71us3fyw6h8wbcxb5ar3rwusy1a6u49956ikzojg3gcwd1dty"
	defaultHomeserverURL   = "http://localhost:6286"
	defaultRelayURL        = "https://httprelay.pubky.app/link/"
	defaultIndexServiceURL = "http://localhost:8080"
	defaultBaseAppPath     = "/pub/eventky.app/"
	defaultDataDir         = ".eventky"
	defaultAuthTimeout     = 120
	defaultHTTPTimeout     = 30

	secretFile  = "secret"
	localDBFile = "local.db"
)

type Config struct {
	Env             string `mapstructure:"app_env"`
	LogLevel        string `mapstructure:"log_level"`
	UseTestnet      bool   `mapstructure:"use_testnet"`
	HomeserverID    string `mapstructure:"homeserver_id"`
	HomeserverURL   string `mapstructure:"homeserver_url"`
	RelayURL        string `mapstructure:"relay_url"`
	IndexServiceURL string `mapstructure:"index_service_url"`
	BaseAppPath     string `mapstructure:"base_app_path"`
	DataDir         string `mapstructure:"data_dir"`
	InviteToken     string `mapstructure:"invite_token"`
	KeyPassphrase   string `mapstructure:"key_passphrase"`
	AuthTimeout     time.Duration
	HTTPTimeout     time.Duration
}

// MustLoad loads the configuration and panics if it is invalid.
func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Load reads .env (if present), the optional config file at path and the
// environment, in increasing priority.
func Load(path string) (*Config, error) {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	return FromViper(v)
}

// SetDefaults registers the client defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("USE_TESTNET", true)
	v.SetDefault("HOMESERVER_ID", defaultHomeserverID)
	v.SetDefault("HOMESERVER_URL", defaultHomeserverURL)
	v.SetDefault("RELAY_URL", defaultRelayURL)
	v.SetDefault("INDEX_SERVICE_URL", defaultIndexServiceURL)
	v.SetDefault("BASE_APP_PATH", defaultBaseAppPath)
	v.SetDefault("DATA_DIR", defaultDataDir)
	v.SetDefault("AUTH_TIMEOUT_SECONDS", defaultAuthTimeout)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", defaultHTTPTimeout)
}

// FromViper builds a validated Config from an already populated viper.
func FromViper(v *viper.Viper) (*Config, error) {
	dataDir := v.GetString("DATA_DIR")
	if dataDir == defaultDataDir {
		if home, err := os.UserHomeDir(); err == nil {
			dataDir = filepath.Join(home, dataDir)
		}
	}

	cfg := &Config{
		Env:             v.GetString("APP_ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		UseTestnet:      v.GetBool("USE_TESTNET"),
		HomeserverID:    v.GetString("HOMESERVER_ID"),
		HomeserverURL:   v.GetString("HOMESERVER_URL"),
		RelayURL:        v.GetString("RELAY_URL"),
		IndexServiceURL: v.GetString("INDEX_SERVICE_URL"),
		BaseAppPath:     v.GetString("BASE_APP_PATH"),
		DataDir:         dataDir,
		InviteToken:     v.GetString("INVITE_TOKEN"),
		KeyPassphrase:   v.GetString("KEY_PASSPHRASE"),
		AuthTimeout:     time.Duration(v.GetInt("AUTH_TIMEOUT_SECONDS")) * time.Second,
		HTTPTimeout:     time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.BaseAppPath, "/pub/") || !strings.HasSuffix(c.BaseAppPath, "/") {
		return fmt.Errorf("base_app_path %q must start with /pub/ and end with /", c.BaseAppPath)
	}
	if !c.UseTestnet && c.HomeserverURL == "" {
		return fmt.Errorf("homeserver_url is required outside testnet")
	}
	if c.AuthTimeout <= 0 {
		return fmt.Errorf("auth_timeout_seconds must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive")
	}
	return nil
}

// Mode selects the runtime the client initializes.
func (c *Config) Mode() runtime.Mode {
	return runtime.ModeFor(c.UseTestnet)
}

// SecretPath is where the CLI keeps the identity's secret key.
func (c *Config) SecretPath() string {
	return filepath.Join(c.DataDir, secretFile)
}

// LocalDBPath backs the local runtime. An empty DataDir keeps it in memory.
func (c *Config) LocalDBPath() string {
	if c.DataDir == "" {
		return ":memory:"
	}
	return filepath.Join(c.DataDir, localDBFile)
}

func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}

func (c *Config) IsDev() bool {
	return c.Env == EnvDev
}

func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal || c.Env == ""
}
