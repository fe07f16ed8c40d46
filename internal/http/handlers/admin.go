package handlers

import (
	"errors"
	"net/http"

	"github.com/ethioska/sqboom/internal/ai"
	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/ws"

	"github.com/gin-gonic/gin"
)

// AdminSettings returns the full configuration including the coupon code.
func (h *Handler) AdminSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"platform": h.Engine.PlatformSettings(),
		"coupon":   h.Engine.CouponSettings(),
	})
}

type UpdateSettingsRequest struct {
	Platform domain.PlatformSettings `json:"platform"`
	Coupon   domain.CouponSettings   `json:"coupon"`
}

// UpdateSettings replaces both settings blobs and pushes the public view
// to connected clients.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.Platform.EtbRate < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "etbRate must be at least 1"})
		return
	}
	if req.Coupon.RequiredTaps <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requiredTaps must be positive"})
		return
	}

	h.Engine.UpdateSettings(req.Platform, req.Coupon)
	h.Hub.Broadcast(ws.EventSettings, gin.H{
		"etbRate": req.Platform.EtbRate,
		"adText":  req.Platform.AdText,
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Accounts lists every account for the admin console.
func (h *Handler) Accounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"accounts": h.Engine.Accounts()})
}

// ToggleBan flips the ban flag on the target account and notifies its
// live connections.
func (h *Handler) ToggleBan(c *gin.Context) {
	id := c.Param("id")
	if !h.Engine.ToggleBan(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	account, _ := h.Engine.Account(id)
	h.Hub.SendTo(id, ws.EventBan, gin.H{"isBanned": account.IsBanned})
	c.JSON(http.StatusOK, gin.H{"id": id, "isBanned": account.IsBanned})
}

// Stats summarizes the user population.
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.Stats())
}

type DraftRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// DraftAdText asks the AI copywriter for a banner line. The admin still
// has to save it through UpdateSettings.
func (h *Handler) DraftAdText(c *gin.Context) {
	var req DraftRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	draft, err := h.Copywriter.Draft(c.Request.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ai copywriter not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}
