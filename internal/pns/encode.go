package pns

import (
	"encoding/binary"
	"fmt"
)

const (
	HeaderLen         = 6
	RunControlDataLen = 6
	RunControlLen     = HeaderLen + RunControlDataLen
)

// Frame is one outbound PNS request.
type Frame struct {
	ProductID  uint16
	Command    Command
	Reserved   uint8
	PayloadLen uint16
	Payload    []byte
}

// Codec frames PNS commands. LengthOrder selects the byte order of the
// payload length field; product id is always big-endian.
type Codec struct {
	LengthOrder binary.ByteOrder
}

// DefaultCodec writes every multi-byte field big-endian.
func DefaultCodec() Codec {
	return Codec{LengthOrder: binary.BigEndian}
}

func (c Codec) lengthOrder() binary.ByteOrder {
	if c.LengthOrder == nil {
		return binary.BigEndian
	}
	return c.LengthOrder
}

func (c Codec) putHeader(buf []byte, cmd Command, payloadLen uint16) {
	binary.BigEndian.PutUint16(buf[0:2], ProductID)
	buf[2] = byte(cmd)
	buf[3] = 0
	c.lengthOrder().PutUint16(buf[4:6], payloadLen)
}

// EncodeRunControl validates r and returns the 12-byte run-control frame.
func (c Codec) EncodeRunControl(r RunControl) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	var buf [RunControlLen]byte
	c.putHeader(buf[:], CommandRunControl, RunControlDataLen)
	leds := r.LEDs()
	for i, p := range leds {
		buf[HeaderLen+i] = byte(p)
	}
	buf[HeaderLen+5] = byte(r.Buzzer)
	return buf[:], nil
}

// EncodeClear returns the clear frame.
func (c Codec) EncodeClear() []byte {
	var buf [HeaderLen]byte
	c.putHeader(buf[:], CommandClear, 0)
	return buf[:]
}

// EncodeGetData returns the status acquisition frame.
func (c Codec) EncodeGetData() []byte {
	var buf [HeaderLen]byte
	c.putHeader(buf[:], CommandGetData, 0)
	return buf[:]
}

// DecodeFrame parses an outbound request. It is the inverse of the Encode*
// methods and is used by device simulators.
func (c Codec) DecodeFrame(b []byte) (Frame, error) {
	if len(b) < HeaderLen {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(b))
	}
	f := Frame{
		ProductID:  binary.BigEndian.Uint16(b[0:2]),
		Command:    Command(b[2]),
		Reserved:   b[3],
		PayloadLen: c.lengthOrder().Uint16(b[4:6]),
	}
	if f.ProductID != ProductID {
		return Frame{}, fmt.Errorf("%w: 0x%04x", ErrProductMismatch, f.ProductID)
	}
	if len(b)-HeaderLen < int(f.PayloadLen) {
		return Frame{}, fmt.Errorf("%w: payload want=%d have=%d", ErrShortFrame, f.PayloadLen, len(b)-HeaderLen)
	}
	if f.PayloadLen > 0 {
		f.Payload = make([]byte, f.PayloadLen)
		copy(f.Payload, b[HeaderLen:HeaderLen+int(f.PayloadLen)])
	}
	return f, nil
}

// RunControlFromPayload rebuilds run-control settings from a frame payload.
func RunControlFromPayload(p []byte) (RunControl, error) {
	if len(p) != RunControlDataLen {
		return RunControl{}, fmt.Errorf("%w: run-control payload %d bytes", ErrShortFrame, len(p))
	}
	return RunControl{
		Red:    LEDPattern(p[0]),
		Amber:  LEDPattern(p[1]),
		Green:  LEDPattern(p[2]),
		Blue:   LEDPattern(p[3]),
		White:  LEDPattern(p[4]),
		Buzzer: BuzzerMode(p[5]),
	}, nil
}

var defaultCodec = DefaultCodec()

func EncodeRunControl(r RunControl) ([]byte, error) { return defaultCodec.EncodeRunControl(r) }

func EncodeClear() []byte { return defaultCodec.EncodeClear() }

func EncodeGetData() []byte { return defaultCodec.EncodeGetData() }

func DecodeFrame(b []byte) (Frame, error) { return defaultCodec.DecodeFrame(b) }
