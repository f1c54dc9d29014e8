package game

import (
	"errors"
	"fmt"

	"github.com/taivu9x/bowling-score/internal/domain"
)

// ValidateRoll decides whether pins may be written into slot rollIndex of
// frame frameIndex, given the player's current frames. Clearing a slot
// (domain.Pending) is always allowed. It never mutates frames.
func ValidateRoll(frameIndex, rollIndex int, pins domain.Roll, frames []domain.Frame) error {
	if frameIndex < 0 || frameIndex > domain.LastFrame || frameIndex >= len(frames) {
		return fmt.Errorf("%w: frame %d", ErrOutOfRange, frameIndex)
	}
	if rollIndex < 0 || rollIndex >= domain.SlotCount(frameIndex) {
		return fmt.Errorf("%w: frame %d roll %d", ErrOutOfRange, frameIndex, rollIndex)
	}
	if pins == domain.Pending {
		return nil
	}
	if pins < 0 || pins > domain.MaxPins {
		return fmt.Errorf("%w: %d pins", ErrInvalidRoll, pins)
	}

	rolls := frames[frameIndex].Rolls
	if frameIndex < domain.LastFrame {
		return validateRegular(rollIndex, pins, rolls)
	}
	return validateTenth(rollIndex, pins, rolls)
}

func validateRegular(rollIndex int, pins domain.Roll, rolls []domain.Roll) error {
	if rollIndex == 0 {
		return nil
	}
	first := slot(rolls, 0)
	switch {
	case !first.Thrown():
		return fmt.Errorf("%w: first ball not thrown", ErrSlotDisabled)
	case first.Strike():
		return fmt.Errorf("%w: frame closed by strike", ErrSlotDisabled)
	case first.Pins()+pins.Pins() > domain.MaxPins:
		return fmt.Errorf("%w: %d + %d exceeds %d pins", ErrInvalidRoll, first, pins, domain.MaxPins)
	}
	return nil
}

func validateTenth(rollIndex int, pins domain.Roll, rolls []domain.Roll) error {
	first, second := slot(rolls, 0), slot(rolls, 1)
	switch rollIndex {
	case 0:
		return nil
	case 1:
		if !first.Thrown() {
			return fmt.Errorf("%w: first ball not thrown", ErrSlotDisabled)
		}
		if first.Strike() {
			return nil
		}
		if first.Pins()+pins.Pins() > domain.MaxPins {
			return fmt.Errorf("%w: %d + %d exceeds %d pins", ErrInvalidRoll, first, pins, domain.MaxPins)
		}
		return nil
	}

	if !first.Thrown() || !second.Thrown() {
		return fmt.Errorf("%w: bonus ball before second ball", ErrSlotDisabled)
	}
	switch {
	case first.Strike() && second.Strike():
		return nil
	case first.Strike():
		if second.Pins()+pins.Pins() > domain.MaxPins {
			return fmt.Errorf("%w: %d + %d exceeds %d pins", ErrInvalidRoll, second, pins, domain.MaxPins)
		}
		return nil
	case first.Pins()+second.Pins() == domain.MaxPins:
		return nil
	}
	return fmt.Errorf("%w: no bonus ball on an open tenth frame", ErrSlotDisabled)
}

// ValidateFrames checks a whole roll grid by replaying it ball by ball in
// throw order, so every cell is judged only by the cells before it.
func ValidateFrames(grid [][]domain.Roll) error {
	if len(grid) != domain.FrameCount {
		return fmt.Errorf("%w: expected %d frames, got %d", ErrOutOfRange, domain.FrameCount, len(grid))
	}
	replay := domain.NewFrames()
	for f, rolls := range grid {
		if len(rolls) > domain.SlotCount(f) {
			return fmt.Errorf("%w: frame %d has %d slots", ErrOutOfRange, f, domain.SlotCount(f))
		}
		for r, pins := range rolls {
			if !pins.Thrown() {
				continue
			}
			if err := ValidateRoll(f, r, pins, replay); err != nil {
				return fmt.Errorf("frame %d roll %d: %w", f, r, err)
			}
			replay[f].Rolls[r] = pins
		}
	}
	return nil
}

// NormalizeGrid reads a zero-padded grid, where every slot not yet thrown
// holds 0. A 0 in a slot the frame does not allow (after a strike, or the
// bonus ball of an open tenth frame) becomes pending. Other cells are copied
// as is. The input is left untouched.
func NormalizeGrid(grid [][]domain.Roll) [][]domain.Roll {
	out := make([][]domain.Roll, len(grid))
	replay := domain.NewFrames()
	for f, rolls := range grid {
		out[f] = append([]domain.Roll(nil), rolls...)
		if f >= domain.FrameCount || len(rolls) > domain.SlotCount(f) {
			continue
		}
		for r, pins := range out[f] {
			if pins == 0 && errors.Is(ValidateRoll(f, r, pins, replay), ErrSlotDisabled) {
				out[f][r] = domain.Pending
			}
			replay[f].Rolls[r] = out[f][r]
		}
	}
	return out
}

// SetRoll writes pins into a slot and returns the new frames. Later slots of
// the same frame that depended on the old value are cleared when they no
// longer fit. The input is left untouched.
func SetRoll(frames []domain.Frame, frameIndex, rollIndex int, pins domain.Roll) ([]domain.Frame, error) {
	if err := ValidateRoll(frameIndex, rollIndex, pins, frames); err != nil {
		return frames, err
	}
	out := normalize(frames)
	rolls := out[frameIndex].Rolls
	rolls[rollIndex] = pins

	for s := rollIndex + 1; s < len(rolls); s++ {
		if !rolls[s].Thrown() {
			continue
		}
		if pins == domain.Pending || ValidateRoll(frameIndex, s, rolls[s], out) != nil {
			for c := s; c < len(rolls); c++ {
				rolls[c] = domain.Pending
			}
			break
		}
	}
	return out, nil
}

// FrameComplete reports whether every ball the frame is owed has been thrown.
func FrameComplete(frameIndex int, rolls []domain.Roll) bool {
	first, second := slot(rolls, 0), slot(rolls, 1)
	if frameIndex < domain.LastFrame {
		return first.Strike() || (first.Thrown() && second.Thrown())
	}
	if !first.Thrown() || !second.Thrown() {
		return false
	}
	if first.Strike() || first.Pins()+second.Pins() == domain.MaxPins {
		return slot(rolls, 2).Thrown()
	}
	return true
}

func slot(rolls []domain.Roll, i int) domain.Roll {
	if i < len(rolls) {
		return rolls[i]
	}
	return domain.Pending
}

// normalize deep-copies frames and pads every frame to its slot count.
func normalize(frames []domain.Frame) []domain.Frame {
	out := domain.CloneFrames(frames)
	for i := range out {
		for len(out[i].Rolls) < domain.SlotCount(i) {
			out[i].Rolls = append(out[i].Rolls, domain.Pending)
		}
	}
	return out
}
