package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Conversation returns the message history with one peer.
func (h *Handler) Conversation(c *gin.Context) {
	id, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	peer := c.Param("peer")
	c.JSON(http.StatusOK, gin.H{"messages": h.Chat.Conversation(id, peer)})
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage posts a message to the peer. Delivery to live connections
// happens through the hub; support agencies answer automatically.
func (h *Handler) SendMessage(c *gin.Context) {
	id, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SendMessageRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	msg, ok := h.Chat.Send(id, c.Param("peer"), req.Text)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}
