package monitor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/danmuck/pnsctl/internal/observability"
	"github.com/danmuck/pnsctl/internal/pns"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ledView struct {
	Code    uint8  `json:"code"`
	Pattern string `json:"pattern"`
}

type statusView struct {
	Device    string             `json:"device"`
	Connected bool               `json:"connected"`
	Valid     bool               `json:"valid"`
	PolledAt  *time.Time         `json:"polled_at,omitempty"`
	LastError string             `json:"last_error,omitempty"`
	LEDs      map[string]ledView `json:"leds,omitempty"`
	Buzzer    *ledView           `json:"buzzer,omitempty"`
}

func viewOf(addr string, snap Snapshot) statusView {
	v := statusView{
		Device:    addr,
		Connected: snap.Connected,
		Valid:     snap.Valid,
		LastError: snap.LastError,
	}
	if !snap.Valid {
		return v
	}
	polled := snap.PolledAt
	v.PolledAt = &polled
	v.LEDs = make(map[string]ledView, len(snap.Status.LED))
	for i, p := range snap.Status.LED {
		v.LEDs[pns.Channels[i].String()] = ledView{Code: uint8(p), Pattern: p.String()}
	}
	v.Buzzer = &ledView{Code: uint8(snap.Status.Buzzer), Pattern: snap.Status.Buzzer.String()}
	return v
}

// NewRouter exposes /healthz, /status and, when metrics is set, /metrics.
// /status answers 503 until the first poll and while the device is
// disconnected; the last known status stays in the body.
func NewRouter(m *Monitor, metrics *observability.Metrics, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger, m.dev.Address()))
	if metrics != nil {
		r.Use(observability.RequestMetricsMiddleware(metrics))
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/status", func(c *gin.Context) {
		snap := m.Last()
		code := http.StatusOK
		if !snap.Valid || !snap.Connected {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, viewOf(m.dev.Address(), snap))
	})
	return r
}

// Serve runs handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, handler)
}

func ServeListener(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
