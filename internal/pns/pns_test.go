package pns

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodeRunControlLayout(t *testing.T) {
	in := RunControl{Red: LEDOn, Amber: LEDBlinkSlow, Green: LEDFlashTriple, Blue: LEDOff, White: LEDNoChange, Buzzer: BuzzerRing}
	out, err := EncodeRunControl(in)
	if err != nil {
		t.Fatalf("encode run-control: %v", err)
	}
	want := []byte{0x41, 0x42, 0x53, 0x00, 0x00, 0x06, 0x01, 0x02, 0x07, 0x00, 0x09, 0x01}
	if !bytes.Equal(out, want) {
		t.Fatalf("frame mismatch: got=% x want=% x", out, want)
	}
	if len(out) != RunControlLen {
		t.Fatalf("unexpected length: %d", len(out))
	}
}

func TestEncodeRunControlPayloadMatchesSettings(t *testing.T) {
	for _, p := range []LEDPattern{LEDOff, LEDOn, LEDBlinkSlow, LEDBlinkMedium, LEDBlinkHigh, LEDFlashSingle, LEDFlashDouble, LEDFlashTriple, LEDNoChange} {
		for _, m := range []BuzzerMode{BuzzerStop, BuzzerRing, BuzzerNoChange} {
			in := RunControl{Red: p, Amber: p, Green: LEDOff, Blue: p, White: LEDOn, Buzzer: m}
			out, err := EncodeRunControl(in)
			if err != nil {
				t.Fatalf("encode %+v: %v", in, err)
			}
			f, err := DecodeFrame(out)
			if err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			if f.Command != CommandRunControl || f.Reserved != 0 || f.PayloadLen != 6 {
				t.Fatalf("unexpected header: %+v", f)
			}
			got, err := RunControlFromPayload(f.Payload)
			if err != nil {
				t.Fatalf("payload: %v", err)
			}
			if got != in {
				t.Fatalf("payload mismatch: got=%+v want=%+v", got, in)
			}
		}
	}
}

func TestEncodeRunControlRejectsOutOfRange(t *testing.T) {
	out, err := EncodeRunControl(RunControl{Green: LEDPattern(8)})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no bytes, got % x", out)
	}
	if _, err := EncodeRunControl(RunControl{Buzzer: BuzzerMode(2)}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for buzzer, got %v", err)
	}
}

func TestEncodeClearAndGetData(t *testing.T) {
	clr := EncodeClear()
	if !bytes.Equal(clr, []byte{0x41, 0x42, 0x43, 0x00, 0x00, 0x00}) {
		t.Fatalf("clear mismatch: % x", clr)
	}
	get := EncodeGetData()
	if !bytes.Equal(get, []byte{0x41, 0x42, 0x47, 0x00, 0x00, 0x00}) {
		t.Fatalf("get-data mismatch: % x", get)
	}
}

func TestLittleEndianLengthToggle(t *testing.T) {
	c := Codec{LengthOrder: binary.LittleEndian}
	out, err := c.EncodeRunControl(RunControl{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out[4] != 0x06 || out[5] != 0x00 {
		t.Fatalf("expected little-endian length, got % x", out[4:6])
	}
	if out[0] != 0x41 || out[1] != 0x42 {
		t.Fatalf("product id must stay big-endian, got % x", out[0:2])
	}
	f, err := c.DecodeFrame(out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.PayloadLen != 6 {
		t.Fatalf("unexpected payload len: %d", f.PayloadLen)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	if _, err := DecodeFrame([]byte{0x41, 0x42}); !errors.Is(err, ErrShortFrame) {
		t.Fatalf("expected ErrShortFrame, got %v", err)
	}
	if _, err := DecodeFrame([]byte{0x00, 0x01, 0x43, 0, 0, 0}); !errors.Is(err, ErrProductMismatch) {
		t.Fatalf("expected ErrProductMismatch, got %v", err)
	}
	if _, err := DecodeFrame([]byte{0x41, 0x42, 0x53, 0, 0, 6, 1}); !errors.Is(err, ErrShortFrame) {
		t.Fatalf("expected ErrShortFrame for payload, got %v", err)
	}
}

func TestDecodeSimpleResponse(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want Outcome
		err  error
	}{
		{name: "ack", in: []byte{0x06}, want: OutcomeAck},
		{name: "nak", in: []byte{0x15}, want: OutcomeNak},
		{name: "ack trailing", in: []byte{0x06, 0x00}, want: OutcomeAck},
		{name: "empty", in: nil, err: ErrMalformedResponse},
		{name: "unknown", in: []byte{0x99}, err: ErrMalformedResponse},
	}
	for _, tc := range cases {
		got, err := DecodeSimpleResponse(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestDecodeStatusResponse(t *testing.T) {
	s, err := DecodeStatusResponse([]byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("decode status: %v", err)
	}
	want := Status{LED: [5]LEDPattern{1, 2, 3, 4, 5}, Buzzer: 6}
	if s != want {
		t.Fatalf("status mismatch: got=%+v want=%+v", s, want)
	}
	if s.Pattern(Blue) != LEDBlinkHigh {
		t.Fatalf("unexpected blue pattern: %v", s.Pattern(Blue))
	}
}

func TestDecodeStatusResponseAcceptsUnknownValues(t *testing.T) {
	s, err := DecodeStatusResponse([]byte{0x08, 0x0a, 0xff, 0, 0, 0x07})
	if err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if s.LED[0] != 8 || s.LED[2] != 0xff || s.Buzzer != 7 {
		t.Fatalf("unexpected status: %+v", s)
	}
}

func TestDecodeStatusResponseErrors(t *testing.T) {
	if _, err := DecodeStatusResponse([]byte{1, 2}); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if _, err := DecodeStatusResponse(nil); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse for empty, got %v", err)
	}
	if _, err := DecodeStatusResponse([]byte{Nak}); !errors.Is(err, ErrNak) || !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrNak and ErrMalformedResponse, got %v", err)
	}
	if _, err := DecodeStatusResponse([]byte{Nak, 0, 0, 0, 0, 0}); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse for nak-led status, got %v", err)
	}
}

func TestStatusResponseRoundTrip(t *testing.T) {
	in := Status{LED: [5]LEDPattern{LEDOn, LEDOff, LEDFlashDouble, LEDBlinkMedium, LEDOff}, Buzzer: BuzzerRing}
	out, err := DecodeStatusResponse(EncodeStatusResponse(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("mismatch: got=%+v want=%+v", out, in)
	}
}

func TestParseRunControl(t *testing.T) {
	got, err := ParseRunControl([]string{"1", "blink-slow", "flash_triple", "0", "no-change", "ring"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := RunControl{Red: LEDOn, Amber: LEDBlinkSlow, Green: LEDFlashTriple, Blue: LEDOff, White: LEDNoChange, Buzzer: BuzzerRing}
	if got != want {
		t.Fatalf("got=%+v want=%+v", got, want)
	}
	if _, err := ParseRunControl([]string{"8", "0", "0", "0", "0", "0"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := ParseRunControl([]string{"0", "0", "0", "0", "0", "strobe"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for buzzer, got %v", err)
	}
	if _, err := ParseRunControl([]string{"0"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for arity, got %v", err)
	}
}

func TestStatusString(t *testing.T) {
	s := Status{LED: [5]LEDPattern{LEDOn, LEDOff, LEDOff, LEDOff, LEDPattern(8)}, Buzzer: BuzzerStop}
	want := "red=on amber=off green=off blue=off white=led(8) buzzer=stop"
	if s.String() != want {
		t.Fatalf("got=%q want=%q", s.String(), want)
	}
}
