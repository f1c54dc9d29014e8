package game

import "github.com/taivu9x/bowling-score/internal/domain"

// FrameScore returns the contribution of one frame. Strikes and spares borrow
// the next one or two balls thrown, wherever they sit; balls not yet thrown
// count as zero, so the score is provisional until they land.
func FrameScore(frameIndex int, frames []domain.Frame) int {
	if frameIndex < 0 || frameIndex > domain.LastFrame || frameIndex >= len(frames) {
		return 0
	}
	r0, r1 := pinsAt(frames, frameIndex, 0), pinsAt(frames, frameIndex, 1)

	if frameIndex == domain.LastFrame {
		r2 := pinsAt(frames, frameIndex, 2)
		switch {
		case r0 == domain.MaxPins:
			return domain.MaxPins + r1 + r2
		case r0+r1 == domain.MaxPins:
			return domain.MaxPins + r2
		}
		return r0 + r1
	}

	next := frameIndex + 1
	switch {
	case r0 == domain.MaxPins:
		bonus := pinsAt(frames, next, 0)
		// a strike followed by a strike reaches into the frame after, except
		// when the follow-up is the tenth frame, whose second ball is next
		if bonus == domain.MaxPins && next < domain.LastFrame {
			return domain.MaxPins + bonus + pinsAt(frames, next+1, 0)
		}
		return domain.MaxPins + bonus + pinsAt(frames, next, 1)
	case r0+r1 == domain.MaxPins:
		return domain.MaxPins + pinsAt(frames, next, 0)
	}
	return r0 + r1
}

// TotalScore sums every frame of a player.
func TotalScore(frames []domain.Frame) int {
	return RunningTotal(frames, domain.LastFrame)
}

// RunningTotal is the cumulative score through frameIndex.
func RunningTotal(frames []domain.Frame, frameIndex int) int {
	total := 0
	for f := 0; f <= frameIndex && f <= domain.LastFrame; f++ {
		total += FrameScore(f, frames)
	}
	return total
}

// RunningTotals returns the cumulative score after each of the ten frames.
func RunningTotals(frames []domain.Frame) []int {
	totals := make([]int, domain.FrameCount)
	sum := 0
	for f := range totals {
		sum += FrameScore(f, frames)
		totals[f] = sum
	}
	return totals
}

// Rescore recomputes every frame score and completion flag of a player from
// scratch. One roll can move the score of up to two earlier frames, so no
// cached value survives a mutation.
func Rescore(p *domain.PlayerState) {
	complete := len(p.Frames) == domain.FrameCount
	total := 0
	for f := range p.Frames {
		p.Frames[f].Score = FrameScore(f, p.Frames)
		p.Frames[f].IsComplete = FrameComplete(f, p.Frames[f].Rolls)
		total += p.Frames[f].Score
		complete = complete && p.Frames[f].IsComplete
	}
	p.Score = total
	p.IsComplete = complete
}

func pinsAt(frames []domain.Frame, frameIndex, rollIndex int) int {
	if frameIndex >= len(frames) {
		return 0
	}
	return slot(frames[frameIndex].Rolls, rollIndex).Pins()
}
