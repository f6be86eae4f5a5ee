package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	clientConfig "eventky/internal/app/client/config"
)

const (
	envPath = "../../.env"

	defaultRunAddress   = "localhost:8090"
	defaultFlowWait     = 25
	defaultRelayPollSec = 25
)

// Config is the gateway configuration. Client carries everything the
// embedded client facade needs.
type Config struct {
	Client    *clientConfig.Config
	Server    server
	RelayPoll time.Duration
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
	// FlowWait bounds a single await request on a pending auth flow.
	FlowWait time.Duration `env:"FLOW_WAIT_SECONDS"`
}

func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Load reads the gateway settings from .env, the optional file at path
// and the environment.
func Load(path string) (*Config, error) {
	for _, p := range []string{".env", envPath} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				return nil, fmt.Errorf("load %s: %w", p, err)
			}
			break
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
	clientConfig.SetDefaults(v)
	v.SetDefault("RUN_ADDRESS", defaultRunAddress)
	v.SetDefault("FLOW_WAIT_SECONDS", defaultFlowWait)
	v.SetDefault("RELAY_POLL_SECONDS", defaultRelayPollSec)

	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	client, err := clientConfig.FromViper(v)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Client: client,
		Server: server{
			RunAddress: v.GetString("RUN_ADDRESS"),
			FlowWait:   time.Duration(v.GetInt("FLOW_WAIT_SECONDS")) * time.Second,
		},
		RelayPoll: time.Duration(v.GetInt("RELAY_POLL_SECONDS")) * time.Second,
	}
	if cfg.Server.RunAddress == "" {
		return nil, fmt.Errorf("run_address is required")
	}
	if cfg.Server.FlowWait <= 0 {
		return nil, fmt.Errorf("flow_wait_seconds must be positive")
	}
	return cfg, nil
}

// ServesRelay reports whether the gateway hosts its own in-memory relay
// under /relay/. Only the local runtime is paired with it.
func (c *Config) ServesRelay() bool {
	return c.Client.UseTestnet
}
