package handlers

import (
	"errors"
	"net/http"

	"github.com/taivu9x/bowling-score/internal/domain"
	"github.com/taivu9x/bowling-score/internal/game"
	"github.com/taivu9x/bowling-score/internal/repository"
	"github.com/taivu9x/bowling-score/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Games *service.GameService
}

func NewHandler(games *service.GameService) *Handler {
	return &Handler{Games: games}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidPlayer):
		return http.StatusBadRequest
	case game.IsRollRejection(err):
		return http.StatusUnprocessableEntity
	case game.IsLifecycleRejection(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

// fail reports err. Rules refusals carry the unchanged game so clients can
// resync without another round trip.
func fail(c *gin.Context, err error, current domain.Game) {
	status := statusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		c.JSON(status, gin.H{"error": "internal error"})
	case game.IsRejection(err) && current.GameID != "":
		c.JSON(status, gin.H{"error": err.Error(), "data": current})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
