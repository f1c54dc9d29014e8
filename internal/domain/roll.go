package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Roll is the pin count of a single ball, or Pending when the ball has not
// been thrown. On the JSON wire a pending roll is null.
type Roll int

const Pending Roll = -1

var ErrInvalidSymbol = errors.New("invalid roll symbol")

// Pins returns a roll's value; Pending counts as zero.
func (r Roll) Pins() int {
	if r < 0 {
		return 0
	}
	return int(r)
}

// Thrown reports whether the slot holds a value.
func (r Roll) Thrown() bool { return r != Pending }

// Strike reports a ten-pin ball.
func (r Roll) Strike() bool { return r == MaxPins }

func (r Roll) MarshalJSON() ([]byte, error) {
	if r == Pending {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(r))), nil
}

func (r *Roll) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*r = Pending
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("roll: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("roll: %d pins out of range", n)
	}
	*r = Roll(n)
	return nil
}

// RollKind - derived classification of a slot within its frame
type RollKind string

const (
	KindPending RollKind = "PENDING"
	KindStrike  RollKind = "STRIKE"
	KindSpare   RollKind = "SPARE"
	KindOpen    RollKind = "OPEN"
)

// Classify derives the kind of the ball in slot, given the rest of its frame.
// The tenth frame resets the rack after a strike or spare, so its later balls
// can be strikes or spares on their own.
func Classify(frameIndex int, rolls []Roll, slot int) RollKind {
	if slot < 0 || slot >= len(rolls) || !rolls[slot].Thrown() {
		return KindPending
	}
	r := rolls[slot]
	if slot == 0 {
		if r.Strike() {
			return KindStrike
		}
		return KindOpen
	}
	first := rolls[0]
	if frameIndex != LastFrame || slot == 1 {
		if first.Strike() {
			// tenth frame: fresh rack after a strike
			if r.Strike() {
				return KindStrike
			}
			return KindOpen
		}
		if first.Thrown() && first.Pins()+r.Pins() == MaxPins {
			return KindSpare
		}
		return KindOpen
	}

	// tenth frame, bonus ball
	second := rolls[1]
	switch {
	case first.Strike() && !second.Strike():
		if second.Thrown() && second.Pins()+r.Pins() == MaxPins {
			return KindSpare
		}
		return KindOpen
	case r.Strike():
		return KindStrike
	default:
		return KindOpen
	}
}

// FormatSymbols renders a frame in score-sheet notation: digits, X for a
// strike, / for a spare and "" for a pending slot.
func FormatSymbols(frameIndex int, rolls []Roll) []string {
	out := make([]string, len(rolls))
	for i, r := range rolls {
		switch Classify(frameIndex, rolls, i) {
		case KindPending:
			out[i] = ""
		case KindStrike:
			out[i] = "X"
		case KindSpare:
			out[i] = "/"
		default:
			out[i] = strconv.Itoa(r.Pins())
		}
	}
	return out
}

// ParseSymbols is the inverse of FormatSymbols. A "/" resolves to the pins
// left standing by the previous ball of the same rack.
func ParseSymbols(frameIndex int, symbols []string) ([]Roll, error) {
	slots := SlotCount(frameIndex)
	if frameIndex < 0 || frameIndex > LastFrame || len(symbols) > slots {
		return nil, fmt.Errorf("%w: frame %d has %d slots", ErrInvalidSymbol, frameIndex, slots)
	}
	rolls := make([]Roll, slots)
	for i := range rolls {
		rolls[i] = Pending
	}
	for i, sym := range symbols {
		switch sym {
		case "":
			rolls[i] = Pending
		case "X", "x":
			rolls[i] = MaxPins
		case "/":
			prev, ok := rackStart(frameIndex, rolls, i)
			if !ok {
				return nil, fmt.Errorf("%w: %q in frame %d slot %d", ErrInvalidSymbol, sym, frameIndex, i)
			}
			rolls[i] = Roll(MaxPins - prev.Pins())
		default:
			n, err := strconv.Atoi(sym)
			if err != nil || n < 0 || n > MaxPins {
				return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, sym)
			}
			rolls[i] = Roll(n)
		}
	}
	return rolls, nil
}

// rackStart returns the ball that opened the rack slot belongs to, if slot is
// the second ball of a rack.
func rackStart(frameIndex int, rolls []Roll, slot int) (Roll, bool) {
	switch slot {
	case 1:
		if !rolls[0].Thrown() || rolls[0].Strike() {
			return 0, false
		}
		return rolls[0], true
	case 2:
		if frameIndex != LastFrame || !rolls[0].Strike() || !rolls[1].Thrown() || rolls[1].Strike() {
			return 0, false
		}
		return rolls[1], true
	}
	return 0, false
}
