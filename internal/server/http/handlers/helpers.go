package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/returnearn/internal/domain/errors"
	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/server/http/dto"
	"github.com/polkiloo/returnearn/internal/server/http/middleware"
)

// CurrentUser returns the login of the authenticated session, or "".
func CurrentUser(c *gin.Context) string {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return ""
	}
	return claims.Subject
}

// writeError maps domain errors to HTTP statuses. Client errors carry a message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.Status(http.StatusUnauthorized)
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrVersionConflict):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrScoring):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: message})
}

func toReturnResponse(r model.ReturnRecord) dto.ReturnResponse {
	return dto.ReturnResponse{
		ID:            r.ID,
		Username:      r.Username,
		ProductName:   r.ProductName,
		Condition:     string(r.Condition),
		DaysUsed:      r.DaysUsed,
		Score:         r.Score,
		Credit:        r.Credit,
		Action:        string(r.Action),
		SubmittedAt:   r.SubmittedAt,
		PickupDate:    r.PickupDate,
		PickupTime:    r.PickupTime,
		PolicyVersion: r.PolicyVersion,
		ModelVersion:  r.ModelVersion,
	}
}

func writeRecords(c *gin.Context, records []model.ReturnRecord) {
	if len(records) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	resp := make([]dto.ReturnResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, toReturnResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

func toPolicyResponse(p model.RewardPolicy) dto.PolicyResponse {
	resp := dto.PolicyResponse{Version: p.Version, Multiplier: p.Multiplier, UpdatedBy: p.UpdatedBy}
	if !p.UpdatedAt.IsZero() {
		at := p.UpdatedAt
		resp.UpdatedAt = &at
	}
	return resp
}
