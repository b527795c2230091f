package pns

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLEDPattern accepts a pattern number ("0".."9") or name ("blink-slow").
func ParseLEDPattern(raw string) (LEDPattern, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.ParseUint(v, 10, 8); err == nil {
		p := LEDPattern(n)
		if !p.Valid() {
			return 0, fmt.Errorf("%w: led pattern %d", ErrInvalidArgument, n)
		}
		return p, nil
	}
	v = strings.ReplaceAll(v, "_", "-")
	for p, name := range ledPatternNames {
		if name == v {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: led pattern %q", ErrInvalidArgument, raw)
}

// ParseBuzzerMode accepts a mode number ("0", "1", "9") or name ("ring").
func ParseBuzzerMode(raw string) (BuzzerMode, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.ParseUint(v, 10, 8); err == nil {
		m := BuzzerMode(n)
		if !m.Valid() {
			return 0, fmt.Errorf("%w: buzzer mode %d", ErrInvalidArgument, n)
		}
		return m, nil
	}
	v = strings.ReplaceAll(v, "_", "-")
	for m, name := range buzzerModeNames {
		if name == v {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: buzzer mode %q", ErrInvalidArgument, raw)
}

// ParseRunControl builds settings from five LED arguments and a buzzer
// argument, in wire order.
func ParseRunControl(args []string) (RunControl, error) {
	if len(args) != 6 {
		return RunControl{}, fmt.Errorf("%w: run-control needs 6 values, got %d", ErrInvalidArgument, len(args))
	}
	var leds [5]LEDPattern
	for i := range leds {
		p, err := ParseLEDPattern(args[i])
		if err != nil {
			return RunControl{}, fmt.Errorf("%s: %w", Channels[i], err)
		}
		leds[i] = p
	}
	buzzer, err := ParseBuzzerMode(args[5])
	if err != nil {
		return RunControl{}, err
	}
	return RunControl{
		Red:    leds[Red],
		Amber:  leds[Amber],
		Green:  leds[Green],
		Blue:   leds[Blue],
		White:  leds[White],
		Buzzer: buzzer,
	}, nil
}
