package rest

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	// JWTSecret enables bearer authentication on /appointments when set.
	JWTSecret      string
	JoinRateLimit  float64
	JoinBurst      int
	// TrustedProxies lists the proxies whose X-Forwarded-For is believed.
	// Empty means the socket peer is the client.
	TrustedProxies []string
}

func NewRouter(cfg RouterConfig, h *AppointmentsHandler, log *slog.Logger) (*gin.Engine, error) {
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), RequestID(), RequestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	appts := r.Group("/appointments")
	if cfg.JWTSecret != "" {
		appts.Use(Auth(cfg.JWTSecret))
	}

	joinHandlers := []gin.HandlerFunc{h.Join}
	if cfg.JoinRateLimit > 0 {
		limiter := NewRateLimiter(cfg.JoinRateLimit, cfg.JoinBurst)
		joinHandlers = append([]gin.HandlerFunc{limiter.Middleware()}, joinHandlers...)
	}

	appts.GET("", h.ListCards)
	appts.POST("", h.Create)
	appts.POST("/join", joinHandlers...)
	appts.DELETE("/:id", h.Delete)
	appts.POST("/:id/confirm", h.Confirm)
	appts.GET("/:id/time-vote", h.TimeVote)
	appts.PUT("/:id/time-vote", h.CastTimeVote)
	appts.GET("/:id/place-vote", h.PlaceVote)
	appts.PUT("/:id/place-vote", h.CastPlaceVote)

	return r, nil
}
