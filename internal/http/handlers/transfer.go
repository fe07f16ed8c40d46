package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TransferRequest struct {
	RecipientID string  `json:"recipientId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
}

// Transfer moves value to another account. The ad balance drains before
// the main one; the recipient is always credited on the main balance.
func (h *Handler) Transfer(c *gin.Context) {
	id, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req TransferRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if !h.Engine.Transfer(id, req.RecipientID, req.Amount) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "transfer rejected"})
		return
	}

	account, _ := h.Engine.Account(id)
	c.JSON(http.StatusOK, gin.H{
		"coins":        account.Coins,
		"adCoins":      account.AdCoins,
		"totalBalance": account.TotalBalance(),
	})
}
