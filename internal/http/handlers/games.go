package handlers

import (
	"net/http"

	"github.com/taivu9x/bowling-score/internal/domain"

	"github.com/gin-gonic/gin"
)

// JoinRequest adds a player to a waiting game
type JoinRequest struct {
	PlayerID   string `json:"playerId" binding:"required"`
	PlayerName string `json:"playerName"`
}

// LeaveRequest removes a player from a waiting game
type LeaveRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

// RollRequest carries either a player's full roll grid (Rolls) or a single
// cell (Frame, Roll, Pins). A null or missing Pins clears the cell.
type RollRequest struct {
	PlayerID string          `json:"playerId" binding:"required"`
	Rolls    [][]domain.Roll `json:"rolls"`
	Frame    *int            `json:"frame"`
	Roll     *int            `json:"roll"`
	Pins     *domain.Roll    `json:"pins"`
}

func (h *Handler) CreateGame(c *gin.Context) {
	g, err := h.Games.Create(c.Request.Context())
	if err != nil {
		fail(c, err, domain.Game{})
		return
	}
	ok(c, http.StatusCreated, g)
}

func (h *Handler) ListGames(c *gin.Context) {
	status := domain.GameStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "unknown status: "+string(status))
		return
	}
	games, err := h.Games.List(c.Request.Context(), status)
	if err != nil {
		fail(c, err, domain.Game{})
		return
	}
	ok(c, http.StatusOK, games)
}

func (h *Handler) GetGame(c *gin.Context) {
	g, err := h.Games.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, domain.Game{})
		return
	}
	ok(c, http.StatusOK, g)
}

func (h *Handler) JoinGame(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.Games.Join(c.Request.Context(), c.Param("id"), req.PlayerID, req.PlayerName)
	h.reply(c, g, err)
}

func (h *Handler) LeaveGame(c *gin.Context) {
	var req LeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.Games.Leave(c.Request.Context(), c.Param("id"), req.PlayerID)
	h.reply(c, g, err)
}

func (h *Handler) StartGame(c *gin.Context) {
	g, err := h.Games.Start(c.Request.Context(), c.Param("id"))
	h.reply(c, g, err)
}

func (h *Handler) CompleteGame(c *gin.Context) {
	g, err := h.Games.Complete(c.Request.Context(), c.Param("id"))
	h.reply(c, g, err)
}

func (h *Handler) Roll(c *gin.Context) {
	var req RollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	switch {
	case req.Rolls != nil:
		g, err := h.Games.SetRolls(ctx, id, req.PlayerID, req.Rolls)
		h.reply(c, g, err)
	case req.Frame != nil && req.Roll != nil:
		pins := domain.Pending
		if req.Pins != nil {
			pins = *req.Pins
		}
		g, err := h.Games.RecordRoll(ctx, id, req.PlayerID, *req.Frame, *req.Roll, pins)
		h.reply(c, g, err)
	default:
		badRequest(c, "either rolls or frame and roll are required")
	}
}

func (h *Handler) reply(c *gin.Context, g domain.Game, err error) {
	if err != nil {
		fail(c, err, g)
		return
	}
	ok(c, http.StatusOK, g)
}
