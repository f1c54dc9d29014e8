package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/taivu9x/bowling-score/internal/domain"
)

// Rules tunes the lifecycle. The zero value accepts rolls in any frame order.
type Rules struct {
	// StrictOrder rejects a ball in frame k until frames 0..k-1 are complete.
	StrictOrder bool
}

// CommandType names a lifecycle transition.
type CommandType string

const (
	CmdAddPlayer    CommandType = "add_player"
	CmdRemovePlayer CommandType = "remove_player"
	CmdStart        CommandType = "start"
	CmdRecordRoll   CommandType = "record_roll"
	CmdSetRolls     CommandType = "set_rolls"
	CmdComplete     CommandType = "complete"
)

// Command is one transition request. Only the fields its Type needs are read.
type Command struct {
	Type     CommandType
	PlayerID string
	Name     string
	Frame    int
	Roll     int
	Pins     domain.Roll
	Rolls    [][]domain.Roll
}

// New returns an empty game waiting for players.
func New(id string, now time.Time) domain.Game {
	return domain.Game{
		GameID:       id,
		Status:       domain.StatusWaiting,
		PlayerStates: []domain.PlayerState{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Apply dispatches cmd. On refusal it returns g unchanged with the reason.
func (r Rules) Apply(g domain.Game, cmd Command) (domain.Game, error) {
	switch cmd.Type {
	case CmdAddPlayer:
		return AddPlayer(g, cmd.PlayerID, cmd.Name)
	case CmdRemovePlayer:
		return RemovePlayer(g, cmd.PlayerID)
	case CmdStart:
		return Start(g)
	case CmdRecordRoll:
		return r.RecordRoll(g, cmd.PlayerID, cmd.Frame, cmd.Roll, cmd.Pins)
	case CmdSetRolls:
		return r.SetRolls(g, cmd.PlayerID, cmd.Rolls)
	case CmdComplete:
		return Complete(g)
	}
	return g, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

// Replay folds cmds over g. Refused commands leave the state as it was and
// their errors are reported at the same index.
func (r Rules) Replay(g domain.Game, cmds []Command) (domain.Game, []error) {
	errs := make([]error, len(cmds))
	for i, cmd := range cmds {
		g, errs[i] = r.Apply(g, cmd)
	}
	return g, errs
}

// AddPlayer appends a fresh score sheet. Only allowed while waiting.
func AddPlayer(g domain.Game, playerID, name string) (domain.Game, error) {
	if err := requireWaiting(g); err != nil {
		return g, err
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return g, ErrInvalidPlayer
	}
	if g.Player(playerID) >= 0 {
		return g, fmt.Errorf("%w: %s", ErrDuplicatePlayer, playerID)
	}
	if name == "" {
		name = playerID
	}
	next := g.Clone()
	next.PlayerStates = append(next.PlayerStates, domain.NewPlayerState(playerID, name))
	return bump(next), nil
}

// RemovePlayer drops a player. Only allowed while waiting.
func RemovePlayer(g domain.Game, playerID string) (domain.Game, error) {
	if err := requireWaiting(g); err != nil {
		return g, err
	}
	idx := g.Player(playerID)
	if idx < 0 {
		return g, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	next := g.Clone()
	next.PlayerStates = append(next.PlayerStates[:idx], next.PlayerStates[idx+1:]...)
	return bump(next), nil
}

// Start freezes the roster and opens the game for rolls.
func Start(g domain.Game) (domain.Game, error) {
	if err := requireWaiting(g); err != nil {
		return g, err
	}
	if len(g.PlayerStates) == 0 {
		return g, ErrNoPlayers
	}
	next := g.Clone()
	next.Status = domain.StatusInProgress
	return bump(next), nil
}

// Complete freezes the game for good.
func Complete(g domain.Game) (domain.Game, error) {
	if err := requireInProgress(g); err != nil {
		return g, err
	}
	next := g.Clone()
	next.Status = domain.StatusCompleted
	return bump(next), nil
}

// RecordRoll writes one ball for a player and rescores that player.
func (r Rules) RecordRoll(g domain.Game, playerID string, frameIndex, rollIndex int, pins domain.Roll) (domain.Game, error) {
	if err := requireInProgress(g); err != nil {
		return g, err
	}
	idx := g.Player(playerID)
	if idx < 0 {
		return g, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	player := g.PlayerStates[idx]
	if r.StrictOrder && pins.Thrown() {
		if err := checkOrder(frameIndex, player.Frames); err != nil {
			return g, err
		}
	}
	frames, err := SetRoll(player.Frames, frameIndex, rollIndex, pins)
	if err != nil {
		return g, err
	}
	return replaceFrames(g, idx, frames), nil
}

// SetRolls replaces a player's whole roll grid, as the full-array roll
// operation of the API does. Zero padding in slots the frame does not allow
// is read as pending; the grid is then validated ball by ball.
func (r Rules) SetRolls(g domain.Game, playerID string, grid [][]domain.Roll) (domain.Game, error) {
	if err := requireInProgress(g); err != nil {
		return g, err
	}
	idx := g.Player(playerID)
	if idx < 0 {
		return g, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	grid = NormalizeGrid(grid)
	if err := ValidateFrames(grid); err != nil {
		return g, err
	}
	frames := domain.NewFrames()
	for f, rolls := range grid {
		copy(frames[f].Rolls, rolls)
	}
	if r.StrictOrder {
		for f := range frames {
			if !hasThrown(frames[f].Rolls) {
				continue
			}
			if err := checkOrder(f, frames); err != nil {
				return g, err
			}
		}
	}
	return replaceFrames(g, idx, frames), nil
}

func replaceFrames(g domain.Game, idx int, frames []domain.Frame) domain.Game {
	next := g.Clone()
	next.PlayerStates[idx].Frames = domain.CloneFrames(frames)
	Rescore(&next.PlayerStates[idx])
	return bump(next)
}

func checkOrder(frameIndex int, frames []domain.Frame) error {
	for f := 0; f < frameIndex && f < len(frames); f++ {
		if !FrameComplete(f, frames[f].Rolls) {
			return fmt.Errorf("%w: frame %d", ErrFrameOrder, f)
		}
	}
	return nil
}

func hasThrown(rolls []domain.Roll) bool {
	for _, r := range rolls {
		if r.Thrown() {
			return true
		}
	}
	return false
}

func requireWaiting(g domain.Game) error {
	switch g.Status {
	case domain.StatusWaiting:
		return nil
	case domain.StatusCompleted:
		return ErrGameCompleted
	}
	return ErrNotWaiting
}

func requireInProgress(g domain.Game) error {
	switch g.Status {
	case domain.StatusInProgress:
		return nil
	case domain.StatusCompleted:
		return ErrGameCompleted
	}
	return ErrNotInProgress
}

// bump advances the revision and refreshes the game aggregate.
func bump(g domain.Game) domain.Game {
	g.Version++
	g.Score = 0
	for _, p := range g.PlayerStates {
		g.Score += p.Score
	}
	return g
}
