package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Action is the requested switching state.
type Action string

const (
	ActionOn  Action = "on"
	ActionOff Action = "off"
)

const (
	MaxBrightness = 255
	MaxPercent    = 100
)

var ErrParse = errors.New("command: parse error")

// ParseError describes why a command line was rejected.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("command: %s", e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Command is one parsed controller instruction.
// Brightness is nil unless Action is on and a brightness token was supplied.
type Command struct {
	Entity     string `json:"entity_id"`
	Action     Action `json:"action"`
	Brightness *int   `json:"brightness,omitempty"`
}

// Parse reads "<entity_id> <on|off> [brightness]".
// Brightness is 0..255 or 0..100 followed by '%'. Tokens past the third are ignored.
func Parse(line string) (Command, error) {
	if line == "" {
		return Command{}, parseErr(line, "empty command")
	}
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return Command{}, parseErr(line, "expected: <entity_id> <on|off> [brightness]")
	}

	cmd := Command{
		Entity: strings.ToLower(parts[0]),
		Action: Action(strings.ToLower(parts[1])),
	}
	if cmd.Action != ActionOn && cmd.Action != ActionOff {
		return Command{}, parseErr(line, "action must be ON or OFF")
	}

	if len(parts) >= 3 && cmd.Action == ActionOn {
		bri, err := parseBrightness(strings.ToLower(parts[2]))
		if err != nil {
			return Command{}, parseErr(line, err.Error())
		}
		cmd.Brightness = &bri
	}
	return cmd, nil
}

func parseBrightness(raw string) (int, error) {
	if pctRaw, ok := strings.CutSuffix(raw, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return 0, errors.New("brightness percentage must be an integer 0..100%")
		}
		if pct < 0 || pct > MaxPercent {
			return 0, errors.New("brightness percentage out of range 0..100%")
		}
		return ScalePercent(pct), nil
	}
	bri, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("brightness must be an integer 0..255 or '0..100%'")
	}
	if bri < 0 || bri > MaxBrightness {
		return 0, errors.New("brightness out of range 0..255")
	}
	return bri, nil
}

// ScalePercent maps 0..100 onto 0..255, rounding half away from zero (50 -> 128).
func ScalePercent(pct int) int {
	return (pct*MaxBrightness + MaxPercent/2) / MaxPercent
}

func parseErr(line, reason string) error {
	return &ParseError{Line: line, Reason: reason}
}
