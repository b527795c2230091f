// Package client drives one LR5-LAN unit over a single TCP connection.
//
// A Client performs strictly one write-then-read exchange per call and is
// not meant to be shared between goroutines, except that Close may be called
// at any time to abandon a pending exchange.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/danmuck/pnsctl/internal/pns"
)

// DefaultPort is the PNS listener port of LR5-LAN units.
const DefaultPort = 10000

const maxResponseLen = 1024

// State is the connection lifecycle of a Client.
type State int

const (
	StateUnconnected State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "unconnected"
}

// Dialer opens the transport. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Observer receives the result of every exchange that reached the wire.
type Observer interface {
	ObserveExchange(cmd pns.Command, elapsed time.Duration, err error)
}

// Config defines transport defaults for one device.
type Config struct {
	Address        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Codec          pns.Codec
}

func DefaultConfig() Config {
	return Config{
		Address:        net.JoinHostPort("192.168.10.1", fmt.Sprint(DefaultPort)),
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		Codec:          pns.DefaultCodec(),
	}
}

type Option func(*Client)

func WithDialer(d Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// Client owns at most one connection to a PNS device.
type Client struct {
	cfg      Config
	dialer   Dialer
	observer Observer

	mu   sync.Mutex
	conn net.Conn
}

func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		dialer: &net.Dialer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the transport, replacing any existing connection.
func (c *Client) Connect(ctx context.Context) error {
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}
	conn, err := c.dialer.DialContext(ctx, "tcp", c.cfg.Address)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", pns.ErrTransport, c.cfg.Address, err)
	}
	c.Attach(conn)
	return nil
}

// Attach hands an already open connection to the client.
func (c *Client) Attach(conn net.Conn) {
	c.mu.Lock()
	prev := c.conn
	c.conn = conn
	c.mu.Unlock()
	if prev != nil && prev != conn {
		_ = prev.Close()
	}
}

// Close tears down the connection. A blocked exchange fails with
// pns.ErrTransport.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return StateUnconnected
	}
	return StateConnected
}

func (c *Client) Address() string {
	return c.cfg.Address
}

// RunControl sets the LED units and buzzer.
func (c *Client) RunControl(ctx context.Context, r pns.RunControl) error {
	frame, err := c.cfg.Codec.EncodeRunControl(r)
	if err != nil {
		return err
	}
	return c.simple(ctx, pns.CommandRunControl, frame)
}

// Clear turns every LED unit off and stops the buzzer.
func (c *Client) Clear(ctx context.Context) error {
	return c.simple(ctx, pns.CommandClear, c.cfg.Codec.EncodeClear())
}

// GetData reads the current LED and buzzer state.
func (c *Client) GetData(ctx context.Context) (pns.Status, error) {
	start := time.Now()
	resp, err := c.exchange(ctx, c.cfg.Codec.EncodeGetData(), pns.StatusLen)
	if err != nil {
		c.observe(pns.CommandGetData, start, err)
		return pns.Status{}, err
	}
	status, err := pns.DecodeStatusResponse(resp)
	c.observe(pns.CommandGetData, start, err)
	return status, err
}

func (c *Client) simple(ctx context.Context, cmd pns.Command, frame []byte) error {
	start := time.Now()
	resp, err := c.exchange(ctx, frame, 1)
	if err == nil {
		var outcome pns.Outcome
		outcome, err = pns.DecodeSimpleResponse(resp)
		if err == nil && outcome == pns.OutcomeNak {
			err = pns.ErrNak
		}
	}
	c.observe(cmd, start, err)
	return err
}

func (c *Client) observe(cmd pns.Command, start time.Time, err error) {
	if c.observer == nil || errors.Is(err, pns.ErrNotConnected) {
		return
	}
	c.observer.ObserveExchange(cmd, time.Since(start), err)
}

// exchange writes frame and reads one response of at least minLen bytes.
// A response starting with NAK is returned as soon as it arrives. Any
// transport failure drops the connection.
func (c *Client) exchange(ctx context.Context, frame []byte, minLen int) ([]byte, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, pns.ErrNotConnected
	}
	resp, err := c.roundTrip(ctx, conn, frame, minLen)
	if err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("%w: %w", pns.ErrTransport, err)
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, conn net.Conn, frame []byte, minLen int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := conn.SetWriteDeadline(deadline(ctx, c.cfg.WriteTimeout)); err != nil {
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	n, err := conn.Write(frame)
	if err != nil {
		return nil, fmt.Errorf("write: %w", ctxErr(ctx, err))
	}
	if n != len(frame) {
		return nil, fmt.Errorf("write: %w", io.ErrShortWrite)
	}

	// A cancel that fired before this point had its deadline overwritten.
	if err := conn.SetReadDeadline(deadline(ctx, c.cfg.ReadTimeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	buf := make([]byte, maxResponseLen)
	n, err = conn.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.ErrNoProgress
		}
		return nil, fmt.Errorf("read: %w", ctxErr(ctx, err))
	}
	if n < minLen && buf[0] != pns.Nak {
		m, err := io.ReadAtLeast(conn, buf[n:], minLen-n)
		n += m
		if err != nil {
			return nil, fmt.Errorf("read: %d of %d bytes: %w", n, minLen, ctxErr(ctx, err))
		}
	}
	return buf[:n], nil
}

func (c *Client) drop(conn net.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

// deadline picks the earlier of the context deadline and now+timeout.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	var d time.Time
	if timeout > 0 {
		d = time.Now().Add(timeout)
	}
	if cd, ok := ctx.Deadline(); ok && (d.IsZero() || cd.Before(d)) {
		d = cd
	}
	return d
}

func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w (%v)", cerr, err)
	}
	return err
}
