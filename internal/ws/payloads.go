package ws

import (
	"encoding/json"

	"github.com/taivu9x/bowling-score/internal/domain"
)

// client → server
type JoinMessage struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

// server → client
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// GameUpdatePayload is advisory: receivers pull the full snapshot.
type GameUpdatePayload struct {
	GameID  string            `json:"gameId"`
	Status  domain.GameStatus `json:"status"`
	Version int64             `json:"version"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// Envelope is the decoded form of any server message, used by clients.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func updateFor(g domain.Game) GameUpdatePayload {
	return GameUpdatePayload{GameID: g.GameID, Status: g.Status, Version: g.Version}
}

func encode(msgType string, data any) []byte {
	b, _ := json.Marshal(Message{Type: msgType, Data: data})
	return b
}
