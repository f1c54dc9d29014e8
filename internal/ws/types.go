package ws

const (
	// client - server
	MsgJoin = "join"

	// server - client
	MsgGameUpdate = "gameUpdate"
	MsgError      = "error"
)
