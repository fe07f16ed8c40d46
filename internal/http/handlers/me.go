package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	id, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	account, ok := h.Engine.Account(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account":        account,
		"totalBalance":   account.TotalBalance(),
		"adBonusReadyAt": h.Engine.AdBonusReadyAt(id).UnixMilli(),
	})
}

// MyTransactions returns the account's history, newest first. The optional
// limit query caps the page size.
func (h *Handler) MyTransactions(c *gin.Context) {
	id, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": h.Engine.Transactions(id, limit)})
}
