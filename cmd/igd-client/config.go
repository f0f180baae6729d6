package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/igd-protocol/igd-go/pkg/client"
	"github.com/igd-protocol/igd-go/pkg/log"
	"github.com/igd-protocol/igd-go/pkg/rpc"
)

// Config holds the client configuration. Flags override file values.
type Config struct {
	// Location is the gateway's description document URL.
	Location string `yaml:"location"`

	// InternalHost is the LAN address mappings point at (empty: autodetect).
	InternalHost string `yaml:"internal_host"`

	// StatePath persists known gateways and owned mappings as JSON.
	StatePath string `yaml:"state_path"`

	// ProtocolLog captures all gateway traffic to a CBOR file.
	ProtocolLog string `yaml:"protocol_log"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Timeout bounds each SOAP exchange. In the file it is a duration
	// string like "5s", parsed by loadConfig.
	Timeout time.Duration `yaml:"-"`
}

// registerFlags adds the flags shared by all gateway commands to fs.
// The returned config path flag is resolved by loadConfig.
func (c *Config) registerFlags(fs *flag.FlagSet) *string {
	configPath := fs.String("config", "", "YAML configuration file")
	fs.StringVar(&c.Location, "location", "", "Gateway description document URL")
	fs.StringVar(&c.InternalHost, "internal-host", "", "LAN address mappings point at (default: autodetect)")
	fs.StringVar(&c.StatePath, "state", "", "State file for known gateways and owned mappings")
	fs.StringVar(&c.ProtocolLog, "protocol-log", "", "Capture gateway traffic to this file")
	fs.StringVar(&c.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.DurationVar(&c.Timeout, "timeout", rpc.DefaultCallTimeout, "Timeout per gateway exchange")
	return configPath
}

// loadConfig parses fs, merges in the YAML file if one was named, and
// validates the result. Flags set on the command line win.
func loadConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var flagCfg Config
	configPath := flagCfg.registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := flagCfg
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw struct {
			Config  `yaml:",inline"`
			Timeout string `yaml:"timeout"`
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if raw.Timeout != "" {
			d, err := time.ParseDuration(raw.Timeout)
			if err != nil {
				return Config{}, fmt.Errorf("parse config timeout: %w", err)
			}
			raw.Config.Timeout = d
		}

		cfg = raw.Config
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "location":
				cfg.Location = flagCfg.Location
			case "internal-host":
				cfg.InternalHost = flagCfg.InternalHost
			case "state":
				cfg.StatePath = flagCfg.StatePath
			case "protocol-log":
				cfg.ProtocolLog = flagCfg.ProtocolLog
			case "log-level":
				cfg.LogLevel = flagCfg.LogLevel
			case "timeout":
				cfg.Timeout = flagCfg.Timeout
			}
		})
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = rpc.DefaultCallTimeout
		}
	}

	if cfg.Location == "" {
		return Config{}, fmt.Errorf("no gateway location (use -location or a config file)")
	}
	return cfg, nil
}

// connect builds a client from cfg. The returned cleanup closes the
// protocol log file, if one was opened.
func connect(ctx context.Context, cfg Config) (*client.Client, func(), error) {
	logger := newLogger(cfg.LogLevel)
	cleanup := func() {}

	var plog log.Logger
	if cfg.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return nil, nil, fmt.Errorf("open protocol log: %w", err)
		}
		plog = fl
		cleanup = func() { fl.Close() }
	}

	c, err := client.Load(ctx, cfg.Location, client.Config{
		Caller:         rpc.NewHTTPCaller(cfg.Timeout),
		ProtocolLogger: plog,
		Logger:         logger,
		InternalHost:   cfg.InternalHost,
		StatePath:      cfg.StatePath,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return c, cleanup, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
