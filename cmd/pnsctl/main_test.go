package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/pnsctl/internal/pns"
	"github.com/danmuck/pnsctl/internal/testutil/pnstest"
	"github.com/danmuck/pnsctl/internal/testutil/testlog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func deviceArgs(t *testing.T, dev *pnstest.Device) []string {
	t.Helper()
	host, port, err := net.SplitHostPort(dev.Addr())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	return []string{"--host", host, "--port", port, "--timeout", "2s"}
}

func TestClearCommand(t *testing.T) {
	testlog.Start(t)
	dev := pnstest.Start(t)
	dev.SetStatus(pns.Status{LED: [5]pns.LEDPattern{pns.LEDOn}})
	if _, err := execute(t, append(deviceArgs(t, dev), "C")...); err != nil {
		t.Fatalf("clear: %v", err)
	}
	frames := dev.Frames()
	if len(frames) != 1 || frames[0].Command != pns.CommandClear {
		t.Fatalf("unexpected frames: %+v", frames)
	}
	if dev.Status() != (pns.Status{}) {
		t.Fatalf("expected cleared device, got %+v", dev.Status())
	}
}

func TestRunThenGet(t *testing.T) {
	testlog.Start(t)
	dev := pnstest.Start(t)
	if _, err := execute(t, append(deviceArgs(t, dev), "S", "1", "0", "blink-slow", "0", "9", "ring")...); err != nil {
		t.Fatalf("run: %v", err)
	}
	out, err := execute(t, append(deviceArgs(t, dev), "get")...)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, want := range []string{
		"Response data for status acquisition command",
		"LED Red pattern : 1 (on)",
		"LED Green pattern : 2 (blink-slow)",
		"LED White pattern : 0 (off)",
		"Buzzer Mode : 1 (ring)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestRunRejectsInvalidPattern(t *testing.T) {
	testlog.Start(t)
	dev := pnstest.Start(t)
	_, err := execute(t, append(deviceArgs(t, dev), "run", "8", "0", "0", "0", "0", "0")...)
	if !errors.Is(err, pns.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(dev.Frames()) != 0 {
		t.Fatalf("invalid settings must not reach the device")
	}
}

func TestNakFailsCommand(t *testing.T) {
	testlog.Start(t)
	dev := pnstest.Start(t)
	dev.SetResponder(func(pns.Frame) []byte { return []byte{pns.Nak} })
	if _, err := execute(t, append(deviceArgs(t, dev), "clear")...); !errors.Is(err, pns.ErrNak) {
		t.Fatalf("expected ErrNak, got %v", err)
	}
	if _, err := execute(t, append(deviceArgs(t, dev), "get")...); !errors.Is(err, pns.ErrNak) {
		t.Fatalf("expected ErrNak for get, got %v", err)
	}
}

func TestUnreachableDevice(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	_ = ln.Close()
	if _, err := execute(t, "--host", "127.0.0.1", "--port", port, "--timeout", "500ms", "clear"); !errors.Is(err, pns.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestConfigFileWithFlagOverride(t *testing.T) {
	testlog.Start(t)
	dev := pnstest.Start(t)
	host, port, _ := net.SplitHostPort(dev.Addr())
	path := filepath.Join(t.TempDir(), "pnsctl.toml")
	doc := "host = \"" + host + "\"\nport = 1\nlength_byte_order = \"little\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := execute(t, "--config", path, "--port", port, "--length-byte-order", "big", "run", "1", "1", "1", "1", "1", "0"); err != nil {
		t.Fatalf("run: %v", err)
	}
	frames := dev.Frames()
	if len(frames) != 1 || frames[0].PayloadLen != 6 {
		t.Fatalf("unexpected frames: %+v", frames)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "pnsctl.toml")
	out, err := execute(t, "config", "init", path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	out, err = execute(t, "config", "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "192.168.10.1:10000") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestRunArity(t *testing.T) {
	testlog.Start(t)
	if _, err := execute(t, "run", "1", "0"); err == nil {
		t.Fatalf("expected arity error")
	}
}
