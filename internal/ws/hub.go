package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taivu9x/bowling-score/internal/domain"
	"github.com/taivu9x/bowling-score/internal/logger"
)

const (
	cleanupInterval = 10 * time.Minute
	roomIdleTTL     = time.Hour
)

// Hub tracks which observer watches which game and fans out update notices.
type Hub struct {
	Rooms map[string]*Room
	mu    sync.RWMutex
	log   *slog.Logger
	now   func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		Rooms: make(map[string]*Room),
		log:   logger.Component("ws_hub"),
		now:   time.Now,
	}
}

// Join moves c into the room of gameID, leaving any previous room.
func (h *Hub) Join(c *Client, gameID string) {
	h.Leave(c)

	h.mu.Lock()
	room, ok := h.Rooms[gameID]
	if !ok {
		room = NewRoom(gameID, h.now())
		h.Rooms[gameID] = room
	}
	room.add(c, h.now())
	c.setGame(gameID)
	h.mu.Unlock()

	h.log.Debug("observer joined", "client", c.ID, "game_id", gameID)
}

// Leave removes c from its room, if any.
func (h *Hub) Leave(c *Client) {
	gameID := c.setGame("")
	if gameID == "" {
		return
	}
	h.mu.RLock()
	room, ok := h.Rooms[gameID]
	h.mu.RUnlock()
	if ok {
		room.remove(c, h.now())
	}
}

// Broadcast sends a raw message to every observer of gameID.
func (h *Hub) Broadcast(gameID string, data []byte) int {
	h.mu.RLock()
	room, ok := h.Rooms[gameID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	sent, slow := room.broadcast(data)
	for _, c := range slow {
		h.log.Warn("dropping slow observer", "client", c.ID, "game_id", gameID)
		DroppedClients.Inc()
		c.disconnect()
	}
	return sent
}

// Notify announces an accepted mutation to the game's observers.
func (h *Hub) Notify(_ context.Context, g domain.Game) {
	h.PublishUpdate(updateFor(g))
}

// PublishUpdate broadcasts a gameUpdate notice.
func (h *Hub) PublishUpdate(u GameUpdatePayload) {
	n := h.Broadcast(u.GameID, encode(MsgGameUpdate, u))
	h.log.Debug("game update pushed", "game_id", u.GameID, "version", u.Version, "observers", n)
}

// RoomSize returns the number of observers of gameID.
func (h *Hub) RoomSize(gameID string) int {
	h.mu.RLock()
	room, ok := h.Rooms[gameID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	return room.size()
}

// StartCleanup periodically drops rooms nobody has watched for a while.
func (h *Hub) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupStaleRooms()
			}
		}
	}()
}

func (h *Hub) cleanupStaleRooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-roomIdleTTL)
	removed := 0
	for id, room := range h.Rooms {
		if room.idleSince(cutoff) {
			delete(h.Rooms, id)
			removed++
			h.log.Info("cleaned up stale room", "game_id", id)
		}
	}
	return removed
}
