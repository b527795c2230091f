package config

import (
	"github.com/danmuck/pnsctl/internal/monitor"
	"github.com/danmuck/pnsctl/internal/pns"
	"github.com/danmuck/pnsctl/internal/pns/client"
)

func (c Config) ClientConfig() (client.Config, error) {
	order, err := c.ByteOrder()
	if err != nil {
		return client.Config{}, err
	}
	return client.Config{
		Address:        c.Address(),
		ConnectTimeout: c.ConnectTimeout,
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
		Codec:          pns.Codec{LengthOrder: order},
	}, nil
}

func (c Config) MonitorConfig() monitor.Config {
	return monitor.Config{
		Interval: c.Monitor.Interval,
		Backoff: monitor.BackoffConfig{
			InitialDelay: c.Monitor.Backoff.InitialDelay,
			Multiplier:   c.Monitor.Backoff.Multiplier,
			MaxDelay:     c.Monitor.Backoff.MaxDelay,
			Jitter:       c.Monitor.Backoff.Jitter,
		},
	}
}
