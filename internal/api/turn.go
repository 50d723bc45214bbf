package api

import (
	"net/http"

	"character-dialog-service/backend/internal/service"
	apperrors "character-dialog-service/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// TurnRequest is the body of POST /api. All three fields are required and
// must be non-empty.
type TurnRequest struct {
	CharName   string `json:"charName"`
	PlayerName string `json:"playerName"`
	Question   string `json:"question"`
}

// TurnController exposes the dialog turn endpoint.
type TurnController struct {
	turns *service.TurnService
}

// NewTurnController creates the controller for POST /api.
func NewTurnController(turns *service.TurnService) *TurnController {
	return &TurnController{turns: turns}
}

// HandleTurn answers one player question in character.
//
// 200 {"response": ...} on success; 400 {"error": ...} on missing fields;
// 500 {"error": ...} on any turn failure, unknown characters included.
func (tc *TurnController) HandleTurn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("request body must be a JSON object"))
		return
	}

	// Presence checks run before any store or upstream work.
	switch {
	case req.CharName == "":
		c.Error(apperrors.NewValidationError("charName is required"))
		return
	case req.PlayerName == "":
		c.Error(apperrors.NewValidationError("playerName is required"))
		return
	case req.Question == "":
		c.Error(apperrors.NewValidationError("question is required"))
		return
	}

	reply, err := tc.turns.HandleTurn(c.Request.Context(), req.CharName, req.PlayerName, req.Question)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}
