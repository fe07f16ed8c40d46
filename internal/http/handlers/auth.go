package handlers

import (
	"net/http"

	"github.com/ethioska/sqboom/internal/engine"
	"github.com/ethioska/sqboom/internal/service"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"required"`
	ReferralID string `json:"referralId"`
}

// Register resolves the details to an account (creating one on first
// contact) and issues a session token.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	account, ok := h.Engine.RegisterOrLogin(engine.RegistrationDetails{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		ReferralID: req.ReferralID,
	})
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration details"})
		return
	}
	if account.IsBanned {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is banned"})
		return
	}

	token, err := service.GenerateJWT(account.ID, string(account.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"account": account,
	})
}
