package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientConfig "eventky/internal/app/client/config"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	clientConfig.SetDefaults(v)
	v.SetDefault("RUN_ADDRESS", defaultRunAddress)
	v.SetDefault("FLOW_WAIT_SECONDS", defaultFlowWait)
	v.SetDefault("RELAY_POLL_SECONDS", defaultRelayPollSec)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{"DATA_DIR": ""}))
	require.NoError(t, err)

	assert.Equal(t, defaultRunAddress, cfg.Server.RunAddress)
	assert.Equal(t, 25*time.Second, cfg.Server.FlowWait)
	assert.Equal(t, 25*time.Second, cfg.RelayPoll)
	assert.Equal(t, "/pub/eventky.app/", cfg.Client.BaseAppPath)
	assert.True(t, cfg.ServesRelay())
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{name: "empty address", overrides: map[string]any{"RUN_ADDRESS": ""}},
		{name: "zero flow wait", overrides: map[string]any{"FLOW_WAIT_SECONDS": 0}},
		{name: "bad client config", overrides: map[string]any{"BASE_APP_PATH": "/app/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromViper(newViper(tt.overrides))
			assert.Error(t, err)
		})
	}
}

func TestServesRelay_Mainnet(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{"USE_TESTNET": false}))
	require.NoError(t, err)
	assert.False(t, cfg.ServesRelay())
}
