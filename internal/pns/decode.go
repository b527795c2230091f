package pns

import "fmt"

// StatusLen is the size of a successful get-data response.
const StatusLen = 6

// DecodeSimpleResponse reads the ack/nak discriminant of a run-control or
// clear response.
func DecodeSimpleResponse(b []byte) (Outcome, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	switch b[0] {
	case Ack:
		return OutcomeAck, nil
	case Nak:
		return OutcomeNak, nil
	default:
		return 0, fmt.Errorf("%w: unknown discriminant 0x%02x", ErrMalformedResponse, b[0])
	}
}

// DecodeStatusResponse maps a get-data response onto a Status. A lone NAK
// byte matches both ErrNak and ErrMalformedResponse; any other response
// shorter than StatusLen, or led with NAK, is malformed. Decoded values are
// not range checked.
func DecodeStatusResponse(b []byte) (Status, error) {
	if len(b) == 1 && b[0] == Nak {
		return Status{}, fmt.Errorf("%w: %w", ErrNak, ErrMalformedResponse)
	}
	if len(b) < StatusLen {
		return Status{}, fmt.Errorf("%w: status needs %d bytes, got %d", ErrMalformedResponse, StatusLen, len(b))
	}
	if b[0] == Nak {
		return Status{}, fmt.Errorf("%w: nak in status response", ErrMalformedResponse)
	}
	var s Status
	for i := range s.LED {
		s.LED[i] = LEDPattern(b[i])
	}
	s.Buzzer = BuzzerMode(b[5])
	return s, nil
}

// EncodeStatusResponse is the device side of DecodeStatusResponse.
func EncodeStatusResponse(s Status) []byte {
	buf := make([]byte, StatusLen)
	for i, p := range s.LED {
		buf[i] = byte(p)
	}
	buf[5] = byte(s.Buzzer)
	return buf
}
