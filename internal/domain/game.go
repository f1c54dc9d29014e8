package domain

import "time"

// GameStatus - lifecycle state of a game
type GameStatus string

const (
	StatusWaiting    GameStatus = "WAITING"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusCompleted  GameStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s GameStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

const (
	FrameCount     = 10
	LastFrame      = FrameCount - 1
	MaxPins        = 10
	regularSlots   = 2
	lastFrameSlots = 3
)

// SlotCount returns how many roll slots the frame at index holds.
func SlotCount(frameIndex int) int {
	if frameIndex == LastFrame {
		return lastFrameSlots
	}
	return regularSlots
}

// Frame - one of the ten scoring units of a player
type Frame struct {
	Rolls      []Roll `json:"rolls"`
	Score      int    `json:"score"`
	IsComplete bool   `json:"isComplete"`
}

// PlayerState - one player's score sheet inside a game
type PlayerState struct {
	PlayerID   string  `json:"playerId"`
	Name       string  `json:"name"`
	Frames     []Frame `json:"frames"`
	Score      int     `json:"score"`
	IsComplete bool    `json:"isComplete"`
}

// Game - authoritative snapshot of a bowling game
type Game struct {
	GameID       string        `json:"gameId"`
	Status       GameStatus    `json:"status"`
	PlayerStates []PlayerState `json:"playerStates"`
	Score        int           `json:"score"`
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// NewFrames returns ten empty frames, frames 0-8 with two slots and the
// tenth with three.
func NewFrames() []Frame {
	frames := make([]Frame, FrameCount)
	for i := range frames {
		rolls := make([]Roll, SlotCount(i))
		for j := range rolls {
			rolls[j] = Pending
		}
		frames[i] = Frame{Rolls: rolls}
	}
	return frames
}

// NewPlayerState creates a fresh score sheet for a player.
func NewPlayerState(playerID, name string) PlayerState {
	return PlayerState{
		PlayerID: playerID,
		Name:     name,
		Frames:   NewFrames(),
	}
}

// Player returns the index of the player with the given id, or -1.
func (g *Game) Player(playerID string) int {
	for i := range g.PlayerStates {
		if g.PlayerStates[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy, so transitions never share frame slices with
// their input.
func (g Game) Clone() Game {
	out := g
	if g.PlayerStates == nil {
		return out
	}
	out.PlayerStates = make([]PlayerState, len(g.PlayerStates))
	for i, p := range g.PlayerStates {
		out.PlayerStates[i] = p.Clone()
	}
	return out
}

// Clone returns a deep copy of the player state.
func (p PlayerState) Clone() PlayerState {
	out := p
	out.Frames = CloneFrames(p.Frames)
	return out
}

// CloneFrames deep-copies a frame slice.
func CloneFrames(frames []Frame) []Frame {
	if frames == nil {
		return nil
	}
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = f
		out[i].Rolls = append([]Roll(nil), f.Rolls...)
	}
	return out
}

// Grid returns the bare roll grid of a player's frames.
func Grid(frames []Frame) [][]Roll {
	grid := make([][]Roll, len(frames))
	for i, f := range frames {
		grid[i] = append([]Roll(nil), f.Rolls...)
	}
	return grid
}
