package pns

import (
	"fmt"
	"strings"
)

// ProductID identifies the LR5-LAN product category ("AB") in every frame.
const ProductID uint16 = 0x4142

// Command identifies a PNS request.
type Command uint8

const (
	CommandRunControl Command = 0x53 // 'S'
	CommandClear      Command = 0x43 // 'C'
	CommandGetData    Command = 0x47 // 'G'
)

func (c Command) String() string {
	switch c {
	case CommandRunControl:
		return "run-control"
	case CommandClear:
		return "clear"
	case CommandGetData:
		return "get-data"
	default:
		return fmt.Sprintf("command(0x%02x)", uint8(c))
	}
}

// Response discriminants.
const (
	Ack byte = 0x06
	Nak byte = 0x15
)

// Outcome is the decoded discriminant of a simple response.
type Outcome uint8

const (
	OutcomeAck Outcome = iota + 1
	OutcomeNak
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAck:
		return "ack"
	case OutcomeNak:
		return "nak"
	default:
		return "unknown"
	}
}

// LEDPattern is the operation pattern of one LED unit.
type LEDPattern uint8

const (
	LEDOff         LEDPattern = 0x00
	LEDOn          LEDPattern = 0x01
	LEDBlinkSlow   LEDPattern = 0x02
	LEDBlinkMedium LEDPattern = 0x03
	LEDBlinkHigh   LEDPattern = 0x04
	LEDFlashSingle LEDPattern = 0x05
	LEDFlashDouble LEDPattern = 0x06
	LEDFlashTriple LEDPattern = 0x07
	LEDNoChange    LEDPattern = 0x09
)

var ledPatternNames = map[LEDPattern]string{
	LEDOff:         "off",
	LEDOn:          "on",
	LEDBlinkSlow:   "blink-slow",
	LEDBlinkMedium: "blink-medium",
	LEDBlinkHigh:   "blink-high",
	LEDFlashSingle: "flash-single",
	LEDFlashDouble: "flash-double",
	LEDFlashTriple: "flash-triple",
	LEDNoChange:    "no-change",
}

// Valid reports whether p is one of the enumerated patterns.
func (p LEDPattern) Valid() bool {
	_, ok := ledPatternNames[p]
	return ok
}

func (p LEDPattern) String() string {
	if name, ok := ledPatternNames[p]; ok {
		return name
	}
	return fmt.Sprintf("led(%d)", uint8(p))
}

// BuzzerMode is the buzzer operation.
type BuzzerMode uint8

const (
	BuzzerStop     BuzzerMode = 0x00
	BuzzerRing     BuzzerMode = 0x01
	BuzzerNoChange BuzzerMode = 0x09
)

var buzzerModeNames = map[BuzzerMode]string{
	BuzzerStop:     "stop",
	BuzzerRing:     "ring",
	BuzzerNoChange: "no-change",
}

func (m BuzzerMode) Valid() bool {
	_, ok := buzzerModeNames[m]
	return ok
}

func (m BuzzerMode) String() string {
	if name, ok := buzzerModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("buzzer(%d)", uint8(m))
}

// Channel indexes the five LED units in wire order.
type Channel int

const (
	Red Channel = iota
	Amber
	Green
	Blue
	White
)

// Channels lists every LED unit in wire order.
var Channels = [5]Channel{Red, Amber, Green, Blue, White}

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Amber:
		return "amber"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case White:
		return "white"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// RunControl is the data area of a run-control command.
type RunControl struct {
	Red    LEDPattern
	Amber  LEDPattern
	Green  LEDPattern
	Blue   LEDPattern
	White  LEDPattern
	Buzzer BuzzerMode
}

// Validate rejects any field outside its enumeration.
func (r RunControl) Validate() error {
	leds := r.LEDs()
	for i, p := range leds {
		if !p.Valid() {
			return fmt.Errorf("%w: %s led pattern %d", ErrInvalidArgument, Channels[i], uint8(p))
		}
	}
	if !r.Buzzer.Valid() {
		return fmt.Errorf("%w: buzzer mode %d", ErrInvalidArgument, uint8(r.Buzzer))
	}
	return nil
}

// LEDs returns the LED patterns in wire order.
func (r RunControl) LEDs() [5]LEDPattern {
	return [5]LEDPattern{r.Red, r.Amber, r.Green, r.Blue, r.White}
}

// Status is the device state reported by a get-data command.
type Status struct {
	LED    [5]LEDPattern
	Buzzer BuzzerMode
}

// Pattern returns the reported pattern for one LED unit.
func (s Status) Pattern(c Channel) LEDPattern {
	return s.LED[c]
}

func (s Status) String() string {
	var b strings.Builder
	for i, p := range s.LED {
		fmt.Fprintf(&b, "%s=%s ", Channels[i], p)
	}
	fmt.Fprintf(&b, "buzzer=%s", s.Buzzer)
	return b.String()
}
