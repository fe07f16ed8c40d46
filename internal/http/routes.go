package http

import (
	"os"
	"strconv"
	"time"

	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/http/handlers"
	"github.com/ethioska/sqboom/internal/http/middleware"
	"github.com/ethioska/sqboom/internal/ws"

	"github.com/gin-gonic/gin"
)

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envWindow(name string, fallback time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

// RegisterRoutes wires the full HTTP surface onto the router.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, hub *ws.Hub, version string) {
	healthHandler := handlers.NewHealthHandler(h.Store, version)

	// read limits from env, with safe defaults
	apiRateLimit := envInt("API_RATE_LIMIT", 60)
	apiRateWindow := envWindow("API_RATE_WINDOW_SECONDS", time.Minute)
	authRateLimit := envInt("AUTH_RATE_LIMIT", 5)
	authRateWindow := envWindow("AUTH_RATE_WINDOW_SECONDS", time.Minute)
	tapRateLimit := envInt("TAP_RATE_LIMIT", 600)
	tapRateWindow := envWindow("TAP_RATE_WINDOW_SECONDS", time.Minute)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, authRateLimit, authRateWindow, tapRateLimit, tapRateWindow)

	// Legacy /api routes kept for older clients
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, authRateLimit, authRateWindow, tapRateLimit, tapRateWindow)

	// WebSocket for live pushes (chat, rate drift, settings)
	r.GET("/ws", h.WS(hub))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, authRateLimit int, authRateWindow time.Duration, tapRateLimit int, tapRateWindow time.Duration) {
	// Auth
	api.POST("/auth/register", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Register)

	// Account
	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/transactions", middleware.JWT(), h.MyTransactions)

	// Gameplay. The per-account limiter runs on top of the engine's own
	// debounce and daily cap.
	tapRL := middleware.TapRateLimit(tapRateLimit, tapRateWindow)
	api.POST("/tap", middleware.JWT(), tapRL, h.Tap)
	api.POST("/bonus", middleware.JWT(), h.ClaimBonus)
	api.POST("/coupon/redeem", middleware.JWT(), h.RedeemCoupon)
	api.POST("/transfer", middleware.JWT(), h.Transfer)

	// Public platform data
	api.GET("/settings", h.PublicSettings)
	api.GET("/agencies", h.Agencies)
	api.GET("/top", h.Top)
	api.GET("/theme", h.GetTheme)

	// Chat
	api.GET("/chat/:peer", middleware.JWT(), h.Conversation)
	api.POST("/chat/:peer", middleware.JWT(), h.SendMessage)

	// Admin console
	admin := api.Group("/admin")
	admin.Use(middleware.JWT(), middleware.RequireRole(string(domain.RoleAdmin)))
	{
		admin.GET("/settings", h.AdminSettings)
		admin.PUT("/settings", h.UpdateSettings)
		admin.GET("/accounts", h.Accounts)
		admin.POST("/accounts/:id/ban", h.ToggleBan)
		admin.GET("/stats", h.Stats)
		admin.PUT("/theme", h.SetTheme)
		admin.POST("/adtext/draft", h.DraftAdText)
	}
}
