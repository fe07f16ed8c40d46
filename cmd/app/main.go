package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethioska/sqboom/internal/ai"
	"github.com/ethioska/sqboom/internal/chat"
	"github.com/ethioska/sqboom/internal/config"
	"github.com/ethioska/sqboom/internal/domain"
	"github.com/ethioska/sqboom/internal/engine"
	httpServer "github.com/ethioska/sqboom/internal/http"
	"github.com/ethioska/sqboom/internal/http/handlers"
	"github.com/ethioska/sqboom/internal/http/middleware"
	"github.com/ethioska/sqboom/internal/kv"
	"github.com/ethioska/sqboom/internal/logger"
	"github.com/ethioska/sqboom/internal/market"
	"github.com/ethioska/sqboom/internal/service"
	"github.com/ethioska/sqboom/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT") == "json")
	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret)

	store := openStore(cfg)
	defer store.Close()

	eng := engine.New(store, engine.Config{
		DailyTapLimit:   cfg.DailyTapLimit,
		AdBonusCoins:    cfg.AdBonusCoins,
		AdBonusCooldown: cfg.AdBonusCooldown,
		TapDebounce:     cfg.TapDebounce,
		PrimaryAgencyID: config.PrimaryAgencyID,
		Agencies:        config.VerifiedAgencies,
	})

	hub := ws.NewHub()

	chatSvc := chat.New(store, config.VerifiedAgencies, cfg.AutoReplyDelay)
	defer chatSvc.Close()
	chatSvc.SetNotify(func(m domain.ChatMessage) {
		hub.SendTo(m.SenderID, ws.EventChat, m)
		hub.SendTo(m.ReceiverID, ws.EventChat, m)
	})
	hub.OnChat(func(senderID, receiverID, text string) {
		chatSvc.Send(senderID, receiverID, text)
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	drifter := market.New(eng, cfg.RateDriftInterval, func(rate float64) {
		hub.Broadcast(ws.EventRate, map[string]float64{"etbRate": rate})
	})
	go drifter.Run(ctx)

	copywriter, err := ai.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Fatal("failed to init copywriter", "error", err)
	}
	defer copywriter.Close()

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.NewHandler(eng, chatSvc, hub, copywriter, store)
	httpServer.RegisterRoutes(r, h, hub, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func openStore(cfg *config.Config) kv.Store {
	switch cfg.StorageBackend {
	case "redis":
		store, err := kv.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("failed to connect redis storage", "error", err)
		}
		return store
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := kv.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect postgres storage", "error", err)
		}
		return store
	default:
		store, err := kv.NewFile(cfg.DataDir)
		if err != nil {
			logger.Fatal("failed to open file storage", "error", err)
		}
		return store
	}
}
