package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultRelayURL, cfg.RelayURL)
	assert.Equal(t, ":8090", cfg.ControlAddr)
	assert.Equal(t, "log", cfg.Renderer)
	assert.Equal(t, "events", cfg.SyncMode)
	assert.Equal(t, 10.0, cfg.MaxSpeed)
	assert.Equal(t, 1.0, cfg.MaxAngularSpeed)
	assert.Equal(t, 10*time.Second, cfg.JoinTimeout)
}

func TestEnvThenFlags(t *testing.T) {
	t.Setenv("RELAY_URL", "ws://localhost:9000/api")
	t.Setenv("ROOM_ID", "lobby")
	t.Setenv("JOIN_TIMEOUT", "3s")
	t.Setenv("AUTO_JOIN", "true")
	t.Setenv("SYNC_MODE", "resync")

	cfg, err := Load(missingEnvFile(t), []string{"-room", "arena", "-speed", "4"})
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:9000/api", cfg.RelayURL)
	assert.Equal(t, "arena", cfg.RoomID)
	assert.Equal(t, 3*time.Second, cfg.JoinTimeout)
	assert.True(t, cfg.AutoJoin)
	assert.Equal(t, "resync", cfg.SyncMode)
	assert.Equal(t, 4.0, cfg.MaxSpeed)
}

func TestDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PLAYER_NAME=ana\nLOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PLAYER_NAME")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "ana", cfg.PlayerName)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{name: "bad renderer", args: []string{"-renderer", "opengl"}, want: "renderer must be one of"},
		{name: "bad sync mode", args: []string{"-sync", "poll"}, want: "sync mode must be one of"},
		{name: "bad relay url", args: []string{"-relay", "not a url"}, want: "relay url must be a valid URL"},
		{name: "mqtt without broker", args: []string{"-renderer", "mqtt"}, want: "mqtt broker"},
		{name: "zero speed", args: []string{"-speed", "0"}, want: "max speed"},
		{name: "malformed env duration", env: map[string]string{"TICK_INTERVAL": "soon"}, want: "TICK_INTERVAL"},
		{name: "unknown flag", args: []string{"-nope"}, want: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingEnvFile(t), tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
