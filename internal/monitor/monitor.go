package monitor

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/danmuck/pnsctl/internal/pns"
	"github.com/danmuck/pnsctl/internal/pns/client"
	"github.com/rs/zerolog"
)

// Config controls the poll loop.
type Config struct {
	Interval time.Duration
	Backoff  BackoffConfig
}

// Device is the subset of *client.Client the monitor drives.
type Device interface {
	Connect(ctx context.Context) error
	GetData(ctx context.Context) (pns.Status, error)
	State() client.State
	Close() error
	Address() string
}

// Sink receives connection and status events.
type Sink interface {
	ObserveStatus(pns.Status)
	ObserveConnect(err error)
	ObserveDisconnect()
}

// Snapshot is the most recent poll result.
type Snapshot struct {
	Status    pns.Status `json:"-"`
	Connected bool       `json:"connected"`
	PolledAt  time.Time  `json:"polled_at"`
	Valid     bool       `json:"valid"`
	LastError string     `json:"last_error,omitempty"`
}

type Option func(*Monitor)

func WithSink(s Sink) Option {
	return func(m *Monitor) {
		m.sink = s
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *Monitor) {
		m.rng = rng
	}
}

type Monitor struct {
	cfg    Config
	dev    Device
	logger zerolog.Logger
	sink   Sink
	rng    *rand.Rand

	mu   sync.RWMutex
	last Snapshot
}

func New(cfg Config, dev Device, logger zerolog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:    cfg,
		dev:    dev,
		logger: logger.With().Str("device", dev.Address()).Logger(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Last returns the most recent snapshot.
func (m *Monitor) Last() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Run polls until ctx is cancelled, then closes the device.
func (m *Monitor) Run(ctx context.Context) error {
	defer func() {
		_ = m.dev.Close()
		m.setConnected(false)
	}()

	attempt := 0
	for {
		if m.dev.State() != client.StateConnected {
			err := m.dev.Connect(ctx)
			if m.sink != nil {
				m.sink.ObserveConnect(err)
			}
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				attempt++
				delay := NextBackoffDelay(m.cfg.Backoff, attempt, m.rng)
				m.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("connect failed")
				m.recordError(err)
				if !sleep(ctx, delay) {
					return nil
				}
				continue
			}
			attempt = 0
			m.setConnected(true)
			m.logger.Info().Msg("connected")
		}

		status, err := m.dev.GetData(ctx)
		switch {
		case err == nil:
			m.recordStatus(status)
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, pns.ErrTransport):
			m.logger.Warn().Err(err).Msg("connection lost")
			m.recordError(err)
			m.setConnected(false)
			continue
		default:
			m.logger.Error().Err(err).Msg("get-data failed")
			m.recordError(err)
		}

		if !sleep(ctx, m.cfg.Interval) {
			return nil
		}
	}
}

func (m *Monitor) recordStatus(s pns.Status) {
	m.mu.Lock()
	changed := !m.last.Valid || m.last.Status != s
	m.last.Status = s
	m.last.Valid = true
	m.last.PolledAt = time.Now()
	m.last.LastError = ""
	m.mu.Unlock()

	if changed {
		m.logger.Info().Stringer("status", s).Msg("status changed")
	} else {
		m.logger.Debug().Stringer("status", s).Msg("status polled")
	}
	if m.sink != nil {
		m.sink.ObserveStatus(s)
	}
}

func (m *Monitor) recordError(err error) {
	m.mu.Lock()
	m.last.LastError = err.Error()
	m.mu.Unlock()
}

func (m *Monitor) setConnected(v bool) {
	m.mu.Lock()
	was := m.last.Connected
	m.last.Connected = v
	m.mu.Unlock()
	if was && !v && m.sink != nil {
		m.sink.ObserveDisconnect()
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
