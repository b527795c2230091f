// Package pnstest runs an in-process LR5-LAN stand-in for tests.
package pnstest

import (
	"net"
	"sync"
	"testing"

	"github.com/danmuck/pnsctl/internal/pns"
)

// Responder overrides the reply to one decoded request. Returning nil
// closes the connection without replying.
type Responder func(f pns.Frame) []byte

// Device is a TCP listener that applies PNS commands to an in-memory status.
type Device struct {
	ln    net.Listener
	codec pns.Codec

	mu        sync.Mutex
	status    pns.Status
	frames    []pns.Frame
	responder Responder
	conns     map[net.Conn]struct{}
	wg        sync.WaitGroup
}

// Start listens on a loopback port until the test ends.
func Start(t *testing.T) *Device {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	d := &Device{
		ln:    ln,
		codec: pns.DefaultCodec(),
		conns: make(map[net.Conn]struct{}),
	}
	d.wg.Add(1)
	go d.acceptLoop()
	t.Cleanup(d.Close)
	return d
}

func (d *Device) Addr() string {
	return d.ln.Addr().String()
}

func (d *Device) SetCodec(c pns.Codec) {
	d.mu.Lock()
	d.codec = c
	d.mu.Unlock()
}

func (d *Device) SetResponder(r Responder) {
	d.mu.Lock()
	d.responder = r
	d.mu.Unlock()
}

func (d *Device) SetStatus(s pns.Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

func (d *Device) Status() pns.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Frames returns every request received so far.
func (d *Device) Frames() []pns.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]pns.Frame, len(d.frames))
	copy(out, d.frames)
	return out
}

// DropConnections closes every accepted connection, keeping the listener.
func (d *Device) DropConnections() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for c := range d.conns {
		_ = c.Close()
	}
}

func (d *Device) Close() {
	_ = d.ln.Close()
	d.DropConnections()
	d.wg.Wait()
}

func (d *Device) acceptLoop() {
	defer d.wg.Done()
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		d.mu.Lock()
		d.conns[conn] = struct{}{}
		d.mu.Unlock()
		d.wg.Add(1)
		go d.serve(conn)
	}
}

func (d *Device) serve(conn net.Conn) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.conns, conn)
		d.mu.Unlock()
		_ = conn.Close()
	}()
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		reply := d.handle(buf[:n])
		if reply == nil {
			return
		}
		if _, err := conn.Write(reply); err != nil {
			return
		}
	}
}

func (d *Device) handle(b []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.codec.DecodeFrame(b)
	if err != nil {
		return []byte{pns.Nak}
	}
	d.frames = append(d.frames, f)
	if d.responder != nil {
		return d.responder(f)
	}
	return Apply(&d.status, f)
}

// Apply mutates s the way the unit does and returns its reply.
func Apply(s *pns.Status, f pns.Frame) []byte {
	switch f.Command {
	case pns.CommandRunControl:
		rc, err := pns.RunControlFromPayload(f.Payload)
		if err != nil || rc.Validate() != nil {
			return []byte{pns.Nak}
		}
		for i, p := range rc.LEDs() {
			if p != pns.LEDNoChange {
				s.LED[i] = p
			}
		}
		if rc.Buzzer != pns.BuzzerNoChange {
			s.Buzzer = rc.Buzzer
		}
		return []byte{pns.Ack}
	case pns.CommandClear:
		if f.PayloadLen != 0 {
			return []byte{pns.Nak}
		}
		*s = pns.Status{}
		return []byte{pns.Ack}
	case pns.CommandGetData:
		return pns.EncodeStatusResponse(*s)
	default:
		return []byte{pns.Nak}
	}
}
