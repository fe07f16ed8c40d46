package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Tap credits one tap. Rejections (ban, daily limit, debounce) come back
// as 429 so the client can back off without special-casing.
func (h *Handler) Tap(c *gin.Context) {
	id, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, ok := h.Engine.Tap(id)
	if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "tap rejected"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coins":       result.Coins,
		"adCoins":     result.AdCoins,
		"level":       result.Level,
		"tapsToday":   result.TapsToday,
		"coinsPerTap": result.CoinsPerTap,
		"leveledUp":   result.LeveledUp,
		"coupon":      result.UnlockedCoupon,
	})
}

// ClaimBonus credits the ad reward once per cooldown.
func (h *Handler) ClaimBonus(c *gin.Context) {
	id, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if !h.Engine.ClaimAdBonus(id) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "bonus not ready",
			"readyAt": h.Engine.AdBonusReadyAt(id).UnixMilli(),
		})
		return
	}

	account, _ := h.Engine.Account(id)
	c.JSON(http.StatusOK, gin.H{
		"coins":   account.Coins,
		"adCoins": account.AdCoins,
		"readyAt": h.Engine.AdBonusReadyAt(id).UnixMilli(),
	})
}

type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) RedeemCoupon(c *gin.Context) {
	id, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req RedeemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if !h.Engine.RedeemCoupon(id, req.Code) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid or already claimed coupon"})
		return
	}

	account, _ := h.Engine.Account(id)
	c.JSON(http.StatusOK, gin.H{
		"coins":        account.Coins,
		"totalBalance": account.TotalBalance(),
	})
}
