package config

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pnsctl/internal/pns/client"
)

const (
	ByteOrderBig    = "big"
	ByteOrderLittle = "little"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config is the resolved pnsctl configuration.
type Config struct {
	Host            string
	Port            int
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	LengthByteOrder string
	Monitor         MonitorConfig
}

type MonitorConfig struct {
	Interval    time.Duration
	MetricsAddr string
	Backoff     BackoffConfig
}

type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

func Default() Config {
	return Config{
		Host:            "192.168.10.1",
		Port:            client.DefaultPort,
		ConnectTimeout:  5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		LengthByteOrder: ByteOrderBig,
		Monitor: MonitorConfig{
			Interval: time.Second,
			Backoff: BackoffConfig{
				InitialDelay: 250 * time.Millisecond,
				Multiplier:   2.0,
				MaxDelay:     10 * time.Second,
				Jitter:       true,
			},
		},
	}
}

type fileConfig struct {
	Host            string            `toml:"host"`
	Port            int               `toml:"port"`
	ConnectTimeout  string            `toml:"connect_timeout"`
	ReadTimeout     string            `toml:"read_timeout"`
	WriteTimeout    string            `toml:"write_timeout"`
	LengthByteOrder string            `toml:"length_byte_order"`
	Monitor         fileMonitorConfig `toml:"monitor"`
}

type fileMonitorConfig struct {
	Interval    string            `toml:"interval"`
	MetricsAddr string            `toml:"metrics_addr"`
	Backoff     fileBackoffConfig `toml:"backoff"`
}

type fileBackoffConfig struct {
	InitialDelay string  `toml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier"`
	MaxDelay     string  `toml:"max_delay"`
	Jitter       bool    `toml:"jitter"`
}

// Load overlays the keys defined in the TOML file at path onto Default.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load pnsctl config: %w", err)
	}
	return resolve(raw, meta)
}

// Parse is Load for in-memory TOML.
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse pnsctl config: %w", err)
	}
	return resolve(raw, meta)
}

func resolve(raw fileConfig, meta toml.MetaData) (Config, error) {
	cfg := Default()

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
	}

	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.ConnectTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.WriteTimeout},
		{"monitor.interval", raw.Monitor.Interval, &cfg.Monitor.Interval},
		{"monitor.backoff.initial_delay", raw.Monitor.Backoff.InitialDelay, &cfg.Monitor.Backoff.InitialDelay},
		{"monitor.backoff.max_delay", raw.Monitor.Backoff.MaxDelay, &cfg.Monitor.Backoff.MaxDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(strings.Split(d.key, ".")...) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if meta.IsDefined("length_byte_order") {
		cfg.LengthByteOrder = strings.ToLower(strings.TrimSpace(raw.LengthByteOrder))
	}
	if meta.IsDefined("monitor", "metrics_addr") {
		cfg.Monitor.MetricsAddr = strings.TrimSpace(raw.Monitor.MetricsAddr)
	}
	if meta.IsDefined("monitor", "backoff", "multiplier") {
		cfg.Monitor.Backoff.Multiplier = raw.Monitor.Backoff.Multiplier
	}
	if meta.IsDefined("monitor", "backoff", "jitter") {
		cfg.Monitor.Backoff.Jitter = raw.Monitor.Backoff.Jitter
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if _, err := c.ByteOrder(); err != nil {
		return err
	}
	if c.ConnectTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("%w: monitor interval must be positive", ErrInvalidConfig)
	}
	if c.Monitor.Backoff.Multiplier < 1.0 {
		return fmt.Errorf("%w: backoff multiplier must be >= 1", ErrInvalidConfig)
	}
	return nil
}

// Address is host:port of the device.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ByteOrder resolves the payload-length byte order.
func (c Config) ByteOrder() (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(c.LengthByteOrder)) {
	case "", ByteOrderBig:
		return binary.BigEndian, nil
	case ByteOrderLittle:
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("%w: length_byte_order %q", ErrInvalidConfig, c.LengthByteOrder)
	}
}
