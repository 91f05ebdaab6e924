package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/server/http/dto"
)

// ReturnHandler manages customer return endpoints.
type ReturnHandler struct {
	facade ReturnFacade
}

// NewReturnHandler constructs ReturnHandler.
func NewReturnHandler(facade ReturnFacade) *ReturnHandler {
	return &ReturnHandler{facade: facade}
}

// Submit handles POST /api/user/returns.
func (h *ReturnHandler) Submit(c *gin.Context) {
	var req dto.SubmitReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	record, err := h.facade.SubmitReturn(c.Request.Context(), CurrentUser(c), model.SubmitReturn{
		ProductName: req.ProductName,
		Condition:   req.Condition,
		DaysUsed:    req.DaysUsed,
		PickupDate:  req.PickupDate,
		PickupTime:  req.PickupTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toReturnResponse(*record))
}

// List handles GET /api/user/returns.
func (h *ReturnHandler) List(c *gin.Context) {
	records, err := h.facade.Returns(c.Request.Context(), CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeRecords(c, records)
}

// Profile handles GET /api/user/profile.
func (h *ReturnHandler) Profile(c *gin.Context) {
	profile, err := h.facade.Profile(c.Request.Context(), CurrentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileResponse{
		Login:        profile.Login,
		TotalCredit:  profile.TotalCredit,
		Returns:      profile.Returns,
		LastReturnAt: profile.LastReturnAt,
	})
}

// Leaderboard handles GET /api/leaderboard.
func (h *ReturnHandler) Leaderboard(c *gin.Context) {
	entries, err := h.facade.Leaderboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if len(entries) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.LeaderboardEntryResponse, 0, len(entries))
	for i, e := range entries {
		resp = append(resp, dto.LeaderboardEntryResponse{
			Rank:        i + 1,
			Username:    e.Username,
			TotalCredit: e.TotalCredit,
			Returns:     e.Returns,
		})
	}
	c.JSON(http.StatusOK, resp)
}
