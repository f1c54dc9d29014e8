package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/taivu9x/bowling-score/internal/ws"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WSDialer opens push channels against the server's /ws endpoint.
type WSDialer struct {
	URL    string
	Header http.Header
	Dialer *websocket.Dialer
}

func (d WSDialer) Dial(ctx context.Context) (Channel, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, d.URL, d.Header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.URL, err)
	}
	return &wsChannel{conn: conn}, nil
}

type wsChannel struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *wsChannel) Join(gameID string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(ws.JoinMessage{Type: ws.MsgJoin, GameID: gameID})
}

func (c *wsChannel) Next() (Event, error) {
	for {
		var env ws.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if _, ok := err.(*json.SyntaxError); ok {
				continue
			}
			return Event{}, err
		}
		ev := Event{Type: env.Type}
		if env.Type == ws.MsgGameUpdate && len(env.Data) > 0 {
			var u ws.GameUpdatePayload
			if err := json.Unmarshal(env.Data, &u); err != nil {
				continue
			}
			ev.GameID, ev.Status, ev.Version = u.GameID, u.Status, u.Version
		}
		return ev, nil
	}
}

func (c *wsChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
