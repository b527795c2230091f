package main

import (
	"context"
	"fmt"
	"time"

	"github.com/danmuck/pnsctl/internal/config"
	"github.com/danmuck/pnsctl/internal/logging"
	"github.com/danmuck/pnsctl/internal/pns/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	ConfigPath      string
	Host            string
	Port            int
	Timeout         time.Duration
	LengthByteOrder string
	Verbose         bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "pnsctl",
		Short: "Drive an LR5-LAN signal tower over the PNS protocol",
		Long: `pnsctl sends PNS commands to one LR5-LAN signal tower over TCP.

LED patterns: off(0) on(1) blink-slow(2) blink-medium(3) blink-high(4)
flash-single(5) flash-double(6) flash-triple(7) no-change(9)
Buzzer modes: stop(0) ring(1) no-change(9)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.ConfigureRuntime()
			if flags.Verbose {
				logging.SetLevel(zerolog.DebugLevel)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.ConfigPath, "config", "c", "", "path to a pnsctl TOML config")
	pf.StringVar(&flags.Host, "host", "", "device host (overrides config)")
	pf.IntVar(&flags.Port, "port", 0, "device port (overrides config)")
	pf.DurationVar(&flags.Timeout, "timeout", 0, "connect/read/write timeout (overrides config)")
	pf.StringVar(&flags.LengthByteOrder, "length-byte-order", "", "payload length byte order: big|little (overrides config)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRunCmd(flags),
		newClearCmd(flags),
		newGetCmd(flags),
		newMonitorCmd(flags),
		newConfigCmd(),
	)
	return root
}

// resolveConfig loads the config file, if any, then applies flag overrides.
func resolveConfig(cmd *cobra.Command, flags *globalFlags) (config.Config, error) {
	cfg := config.Default()
	if flags.ConfigPath != "" {
		loaded, err := config.Load(flags.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	pf := cmd.Flags()
	if pf.Changed("host") {
		cfg.Host = flags.Host
	}
	if pf.Changed("port") {
		cfg.Port = flags.Port
	}
	if pf.Changed("timeout") {
		cfg.ConnectTimeout = flags.Timeout
		cfg.ReadTimeout = flags.Timeout
		cfg.WriteTimeout = flags.Timeout
	}
	if pf.Changed("length-byte-order") {
		cfg.LengthByteOrder = flags.LengthByteOrder
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newClient(cfg config.Config, opts ...client.Option) (*client.Client, error) {
	cc, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	return client.New(cc, opts...), nil
}

// withDevice connects, runs fn for one exchange and closes the connection.
func withDevice(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, c *client.Client) error) error {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log.Debug().Str("device", c.Address()).Msg("connecting")
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Debug().Err(err).Msg("close")
		}
	}()
	if err := fn(ctx, c); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}
