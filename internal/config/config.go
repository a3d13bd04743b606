// Package config loads client settings from an optional .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"letna/metaverse/internal/validator"

	"github.com/joho/godotenv"
)

const DefaultRelayURL = "ws://metaverse.letna.dev/api"

type Config struct {
	RelayURL    string `label:"relay url" validate:"required,url"`
	ControlAddr string `label:"control address" validate:"required"`

	RoomID       string
	RoomPassword string
	PlayerName   string
	Color        string
	AutoJoin     bool

	Renderer   string `label:"renderer" validate:"oneof=log redis mqtt"`
	RedisAddr  string `label:"redis address" validate:"required_if=Renderer redis"`
	MQTTBroker string `label:"mqtt broker" validate:"required_if=Renderer mqtt"`

	OTLPEndpoint string
	LogLevel     string `label:"log level" validate:"oneof=debug info warn error"`
	LogFile      string

	JoinTimeout         time.Duration `label:"join timeout" validate:"min=0s"`
	ReconnectMaxElapsed time.Duration `label:"reconnect max elapsed" validate:"min=0s"`
	TickInterval        time.Duration `label:"tick interval" validate:"min=1ms"`
	SyncMode            string        `label:"sync mode" validate:"oneof=events resync"`
	MaxSpeed            float64       `label:"max speed" validate:"gt=0"`
	MaxAngularSpeed     float64       `label:"max angular speed" validate:"gt=0"`
}

func defaults() Config {
	return Config{
		RelayURL:            DefaultRelayURL,
		ControlAddr:         ":8090",
		Color:               "#ff0000",
		Renderer:            "log",
		RedisAddr:           "localhost:6379",
		LogLevel:            "info",
		JoinTimeout:         10 * time.Second,
		ReconnectMaxElapsed: 2 * time.Minute,
		TickInterval:        50 * time.Millisecond,
		SyncMode:            "events",
		MaxSpeed:            10,
		MaxAngularSpeed:     1,
	}
}

// Load reads envFile if it exists (an empty name means ".env"), then the
// environment, then args.
func Load(envFile string, args []string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := defaults()
	if err := cfg.fromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.fromFlags(args); err != nil {
		return nil, err
	}
	if err := validator.GetValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %s", validator.Message(err))
	}
	return &cfg, nil
}

func (c *Config) fromEnv() error {
	envString("RELAY_URL", &c.RelayURL)
	envString("CONTROL_ADDR", &c.ControlAddr)
	envString("ROOM_ID", &c.RoomID)
	envString("ROOM_PASSWORD", &c.RoomPassword)
	envString("PLAYER_NAME", &c.PlayerName)
	envString("PLAYER_COLOR", &c.Color)
	envString("RENDERER", &c.Renderer)
	envString("REDIS_CONNSTRING", &c.RedisAddr)
	envString("MQTT_BROKER", &c.MQTTBroker)
	envString("OTEL_EXPORTER_OTLP_ENDPOINT", &c.OTLPEndpoint)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("LOG_FILE", &c.LogFile)
	envString("SYNC_MODE", &c.SyncMode)

	return errors.Join(
		envBool("AUTO_JOIN", &c.AutoJoin),
		envDuration("JOIN_TIMEOUT", &c.JoinTimeout),
		envDuration("RECONNECT_MAX_ELAPSED", &c.ReconnectMaxElapsed),
		envDuration("TICK_INTERVAL", &c.TickInterval),
		envFloat("MAX_SPEED", &c.MaxSpeed),
		envFloat("MAX_ANGULAR_SPEED", &c.MaxAngularSpeed),
	)
}

func (c *Config) fromFlags(args []string) error {
	fl := flag.NewFlagSet("client", flag.ContinueOnError)
	fl.StringVar(&c.RelayURL, "relay", c.RelayURL, "relay websocket url")
	fl.StringVar(&c.ControlAddr, "addr", c.ControlAddr, "control API listen address, e.g. :8090")
	fl.StringVar(&c.RoomID, "room", c.RoomID, "room id to pre-fill in the join form")
	fl.StringVar(&c.RoomPassword, "password", c.RoomPassword, "room password")
	fl.StringVar(&c.PlayerName, "name", c.PlayerName, "player name")
	fl.StringVar(&c.Color, "color", c.Color, "player color")
	fl.BoolVar(&c.AutoJoin, "join", c.AutoJoin, "submit the join form on start")
	fl.StringVar(&c.Renderer, "renderer", c.Renderer, "peer renderer: log, redis or mqtt")
	fl.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "redis address or url")
	fl.StringVar(&c.MQTTBroker, "mqtt", c.MQTTBroker, "mqtt broker url")
	fl.StringVar(&c.OTLPEndpoint, "otlp", c.OTLPEndpoint, "OTLP gRPC endpoint; empty disables export")
	fl.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fl.StringVar(&c.LogFile, "log-file", c.LogFile, "rotating log file path")
	fl.DurationVar(&c.JoinTimeout, "join-timeout", c.JoinTimeout, "fail a pending join after this long; 0 disables")
	fl.DurationVar(&c.ReconnectMaxElapsed, "reconnect-max", c.ReconnectMaxElapsed, "give up reconnecting after this long; 0 retries forever")
	fl.DurationVar(&c.TickInterval, "tick", c.TickInterval, "avatar update interval")
	fl.StringVar(&c.SyncMode, "sync", c.SyncMode, "peer sync mode: events or resync")
	fl.Float64Var(&c.MaxSpeed, "speed", c.MaxSpeed, "avatar speed in units per second")
	fl.Float64Var(&c.MaxAngularSpeed, "angular-speed", c.MaxAngularSpeed, "avatar turn rate in radians per second")
	return fl.Parse(args)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
