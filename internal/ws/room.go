package ws

import (
	"sync"
	"time"
)

// Room groups the observers of one game.
type Room struct {
	ID      string
	Clients map[*Client]struct{}

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time
}

func NewRoom(id string, now time.Time) *Room {
	return &Room{
		ID:         id,
		Clients:    make(map[*Client]struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

func (r *Room) add(c *Client, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clients[c] = struct{}{}
	r.lastActive = now
}

// remove drops c and returns how many observers remain.
func (r *Room) remove(c *Client, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Clients, c)
	r.lastActive = now
	return len(r.Clients)
}

func (r *Room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}

// idleSince reports whether the room is empty and untouched since cutoff.
func (r *Room) idleSince(cutoff time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients) == 0 && r.lastActive.Before(cutoff)
}

// broadcast queues data for every observer. Observers whose buffer is full
// are returned so the caller can drop them; they will re-pull on reconnect.
func (r *Room) broadcast(data []byte) (sent int, slow []*Client) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for c := range r.Clients {
		if c.queue(data) {
			sent++
		} else {
			slow = append(slow, c)
		}
	}
	return sent, slow
}
