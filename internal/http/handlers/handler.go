package handlers

import (
	"github.com/ethioska/sqboom/internal/ai"
	"github.com/ethioska/sqboom/internal/chat"
	"github.com/ethioska/sqboom/internal/engine"
	"github.com/ethioska/sqboom/internal/kv"
	"github.com/ethioska/sqboom/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Engine     *engine.Engine
	Chat       *chat.Service
	Hub        *ws.Hub
	Copywriter *ai.Copywriter
	Store      kv.Store
}

func NewHandler(eng *engine.Engine, chatSvc *chat.Service, hub *ws.Hub, copywriter *ai.Copywriter, store kv.Store) *Handler {
	return &Handler{
		Engine:     eng,
		Chat:       chatSvc,
		Hub:        hub,
		Copywriter: copywriter,
		Store:      store,
	}
}

// getAccountID reads the account id placed in the context by the auth
// middleware.
func getAccountID(c *gin.Context) (string, bool) {
	val, ok := c.Get("account_id")
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
