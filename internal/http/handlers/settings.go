package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/kv"
	"github.com/ethioska/sqboom/internal/ws"

	"github.com/gin-gonic/gin"
)

// PublicSettings exposes what the client needs before login. The coupon
// code itself never leaves the server here; taps unlock it.
func (h *Handler) PublicSettings(c *gin.Context) {
	platform := h.Engine.PlatformSettings()
	coupon := h.Engine.CouponSettings()

	c.JSON(http.StatusOK, gin.H{
		"etbRate": platform.EtbRate,
		"adText":  platform.AdText,
		"coupon": gin.H{
			"isEnabled":    coupon.IsEnabled,
			"requiredTaps": coupon.RequiredTaps,
			"reward":       coupon.Reward,
			"prompt":       coupon.Prompt,
		},
	})
}

// Agencies lists the verified contact points.
func (h *Handler) Agencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agencies": h.Engine.Agencies()})
}

// Top returns the leaderboard by total balance.
func (h *Handler) Top(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	top := h.Engine.TopAccounts(limit)
	entries := make([]gin.H, 0, len(top))
	for _, a := range top {
		entries = append(entries, gin.H{
			"id":      a.ID,
			"name":    a.Name,
			"level":   a.Level,
			"balance": a.TotalBalance(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"top": entries})
}

func (h *Handler) GetTheme(c *gin.Context) {
	theme := domain.ThemeDark
	if data, err := h.Store.Get(c.Request.Context(), kv.KeyTheme); err == nil {
		var stored domain.Theme
		if json.Unmarshal(data, &stored) == nil && stored.Valid() {
			theme = stored
		}
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

type ThemeRequest struct {
	Theme domain.Theme `json:"theme" binding:"required"`
}

func (h *Handler) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.BindJSON(&req); err != nil || !req.Theme.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown theme"})
		return
	}

	data, _ := json.Marshal(req.Theme)
	if err := h.Store.Set(c.Request.Context(), kv.KeyTheme, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist theme"})
		return
	}

	h.Hub.Broadcast(ws.EventTheme, req.Theme)
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}
