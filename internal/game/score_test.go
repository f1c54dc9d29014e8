package game

import (
	"testing"

	"github.com/taivu9x/bowling-score/internal/domain"
)

// sheet builds frames from score-sheet notation, one slice per frame.
// Missing frames stay empty.
func sheet(t *testing.T, symbols ...[]string) []domain.Frame {
	t.Helper()
	frames := domain.NewFrames()
	for f, syms := range symbols {
		rolls, err := domain.ParseSymbols(f, syms)
		if err != nil {
			t.Fatalf("frame %d %v: %v", f, syms, err)
		}
		frames[f].Rolls = rolls
	}
	return frames
}

func repeat(n int, syms ...string) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = syms
	}
	return out
}

func TestTotalScore(t *testing.T) {
	cases := []struct {
		name   string
		frames [][]string
		want   int
	}{
		{"perfect game", append(repeat(9, "X"), []string{"X", "X", "X"}), 300},
		{"gutter game", repeat(10, "0", "0"), 0},
		{"all open 4-3", repeat(10, "4", "3"), 70},
		{"strike then open", [][]string{{"X"}, {"3", "4"}}, 24},
		{"spare then three", [][]string{{"7", "/"}, {"3"}}, 16},
		{"double then open", [][]string{{"X"}, {"X"}, {"3", "4"}}, 47},
		{"nine strikes then X 3 4", append(repeat(9, "X"), []string{"X", "3", "4"}), 280},
		{"all spares", append(repeat(9, "5", "/"), []string{"5", "/", "5"}), 150},
		{"nine strikes then X 9 /", append(repeat(9, "X"), []string{"X", "9", "/"}), 289},
		{"nine strikes then 5 / X", append(repeat(9, "X"), []string{"5", "/", "X"}), 275},
		{"strike spare strike", [][]string{{"X"}, {"5", "/"}, {"X"}}, 50},
		{"league night 1", [][]string{
			{"X"}, {"9", "/"}, {"8", "1"}, {"7", "/"}, {"X"},
			{"6", "/"}, {"5", "3"}, {"9", "/"}, {"X"}, {"7", "/", "8"},
		}, 168},
		{"league night 2", [][]string{
			{"7", "/"}, {"X"}, {"9", "/"}, {"8", "1"}, {"7", "/"},
			{"X"}, {"6", "/"}, {"5", "3"}, {"9", "/"}, {"X", "9", "/"},
		}, 170},
		{"league night 3", [][]string{
			{"8", "1"}, {"6", "/"}, {"X"}, {"9", "/"}, {"8", "1"},
			{"7", "/"}, {"X"}, {"8", "1"}, {"7", "/"}, {"9", "/", "7"},
		}, 160},
		{"league night 4", [][]string{
			{"0", "0"}, {"5", "3"}, {"7", "/"}, {"X"}, {"9", "/"},
			{"8", "1"}, {"7", "/"}, {"6", "/"}, {"5", "3"}, {"X", "8", "1"},
		}, 133},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frames := sheet(t, tc.frames...)
			if got := TotalScore(frames); got != tc.want {
				t.Fatalf("TotalScore = %d; want %d", got, tc.want)
			}
		})
	}
}

func TestFrameScoreTenth(t *testing.T) {
	cases := []struct {
		tenth []string
		want  int
	}{
		{[]string{"X", "X", "X"}, 30},
		{[]string{"7", "/", "4"}, 14},
		{[]string{"X", "3", "4"}, 17},
		{[]string{"X", "9", "/"}, 20},
		{[]string{"4", "3"}, 7},
		{[]string{"X"}, 10},
	}
	for _, tc := range cases {
		frames := domain.NewFrames()
		rolls, err := domain.ParseSymbols(domain.LastFrame, tc.tenth)
		if err != nil {
			t.Fatalf("parse %v: %v", tc.tenth, err)
		}
		frames[domain.LastFrame].Rolls = rolls
		if got := FrameScore(domain.LastFrame, frames); got != tc.want {
			t.Fatalf("FrameScore(9, %v) = %d; want %d", tc.tenth, got, tc.want)
		}
	}
}

func TestFrameScoreStrikeLookahead(t *testing.T) {
	for a := 0; a <= 9; a++ {
		for b := 0; a+b <= 9; b++ {
			frames := domain.NewFrames()
			frames[3].Rolls[0] = 10
			frames[4].Rolls[0] = domain.Roll(a)
			frames[4].Rolls[1] = domain.Roll(b)
			if got := FrameScore(3, frames); got != 10+a+b {
				t.Fatalf("strike then (%d,%d) = %d; want %d", a, b, got, 10+a+b)
			}
		}
	}
}

func TestFrameScoreEighthUsesTenthSecondBall(t *testing.T) {
	frames := sheet(t, repeat(8, "0", "0")...)
	frames[8].Rolls[0] = 10
	frames[9].Rolls = []domain.Roll{10, 7, 2}
	if got := FrameScore(8, frames); got != 27 {
		t.Fatalf("FrameScore(8) = %d; want 27", got)
	}

	frames = sheet(t, repeat(7, "0", "0")...)
	frames[7].Rolls[0] = 10
	frames[8].Rolls[0] = 10
	frames[9].Rolls = []domain.Roll{6, 1, domain.Pending}
	if got := FrameScore(7, frames); got != 26 {
		t.Fatalf("FrameScore(7) = %d; want 26", got)
	}
}

func TestFrameScoreProvisional(t *testing.T) {
	frames := sheet(t, []string{"X"})
	if got := FrameScore(0, frames); got != 10 {
		t.Fatalf("lone strike = %d; want 10", got)
	}
	frames[1].Rolls[0] = 10
	if got := FrameScore(0, frames); got != 20 {
		t.Fatalf("double = %d; want 20", got)
	}
	frames[2].Rolls[0] = 4
	if got := FrameScore(0, frames); got != 24 {
		t.Fatalf("double then 4 = %d; want 24", got)
	}
}

func TestRunningTotals(t *testing.T) {
	frames := sheet(t, []string{"X"}, []string{"7", "/"}, []string{"9", "0"})
	got := RunningTotals(frames)
	want := []int{20, 39, 48, 48, 48, 48, 48, 48, 48, 48}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RunningTotals = %v; want %v", got, want)
		}
	}
	if rt := RunningTotal(frames, 1); rt != 39 {
		t.Fatalf("RunningTotal(1) = %d; want 39", rt)
	}
	if TotalScore(frames) != got[domain.LastFrame] {
		t.Fatalf("TotalScore and last running total disagree")
	}
}

func TestRescore(t *testing.T) {
	p := domain.NewPlayerState("p1", "Ann")
	p.Frames = sheet(t, append(repeat(9, "X"), []string{"X", "X", "X"})...)
	Rescore(&p)
	if p.Score != 300 || !p.IsComplete {
		t.Fatalf("perfect game rescore = %d complete=%v", p.Score, p.IsComplete)
	}
	for f, fr := range p.Frames {
		if fr.Score != 30 || !fr.IsComplete {
			t.Fatalf("frame %d = %+v", f, fr)
		}
	}

	p.Frames[9].Rolls[2] = domain.Pending
	Rescore(&p)
	if p.Score != 290 || p.IsComplete || p.Frames[9].IsComplete {
		t.Fatalf("missing bonus ball: score=%d complete=%v", p.Score, p.IsComplete)
	}
}
