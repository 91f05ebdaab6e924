package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/pkg/ledgercsv"
	"github.com/polkiloo/returnearn/internal/server/http/dto"
	"github.com/polkiloo/returnearn/internal/server/http/middleware"
)

// AdminHandler serves the admin console.
type AdminHandler struct {
	facade AdminFacade
	now    func() time.Time
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade, now: time.Now}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	token, err := h.facade.AdminAuthenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuthCookie(c, model.RoleAdmin, token)
	c.Status(http.StatusOK)
}

// Returns handles GET /api/admin/returns with an optional ?user= filter.
func (h *AdminHandler) Returns(c *gin.Context) {
	records, err := h.facade.Ledger(c.Request.Context(), c.Query("user"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeRecords(c, records)
}

// Summary handles GET /api/admin/returns/summary.
func (h *AdminHandler) Summary(c *gin.Context) {
	summary, err := h.facade.ActionSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.ActionSummaryResponse, 0, len(summary))
	for _, s := range summary {
		resp = append(resp, dto.ActionSummaryResponse{Action: string(s.Action), Count: s.Count, Credit: s.Credit})
	}
	c.JSON(http.StatusOK, resp)
}

// Export handles GET /api/admin/returns/export.
func (h *AdminHandler) Export(c *gin.Context) {
	records, err := h.facade.Ledger(c.Request.Context(), c.Query("user"))
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := ledgercsv.Write(&buf, records); err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("returns-%s.csv", h.now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Policy handles GET /api/admin/policy.
func (h *AdminHandler) Policy(c *gin.Context) {
	policy, err := h.facade.Policy(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPolicyResponse(policy))
}

// UpdatePolicy handles PUT /api/admin/policy.
func (h *AdminHandler) UpdatePolicy(c *gin.Context) {
	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}
	if req.Multiplier == nil {
		badRequest(c, "multiplier is required")
		return
	}

	policy, err := h.facade.UpdatePolicy(c.Request.Context(), CurrentUser(c), *req.Multiplier, req.Version)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPolicyResponse(policy))
}

// CreateAdmin handles POST /api/admin/admins.
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	admin, err := h.facade.CreateAdmin(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AdminResponse{ID: admin.ID, Login: admin.Login})
}
