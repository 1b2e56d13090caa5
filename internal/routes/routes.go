package routes

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/models"
	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/services"
	"github.com/kisimediaDE/capacitor-live-activity-relay/pkg/metrics"
)

// NewRouter wires the lifecycle endpoints plus health and metrics. Handlers
// produce only 200 or 400: validation and dispatch failures look the same to
// the caller aside from the error message.
func NewRouter(relay *services.Relay, m *metrics.Metrics, logger *slog.Logger, started time.Time) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), allowAllOrigins())

	r.POST("/live-activity/start", func(c *gin.Context) {
		var req models.StartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		id, err := relay.Start(c.Request.Context(), &req)
		respond(c, id, err)
	})

	r.POST("/live-activity/update", func(c *gin.Context) {
		var req models.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		id, err := relay.Update(c.Request.Context(), &req)
		respond(c, id, err)
	})

	r.POST("/live-activity/end", func(c *gin.Context) {
		var req models.EndRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		id, err := relay.End(c.Request.Context(), &req)
		respond(c, id, err)
	})

	r.POST("/ping", func(c *gin.Context) {
		var req models.PingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		id, err := relay.Ping(c.Request.Context(), &req)
		respond(c, id, err)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":             true,
			"uptime_seconds": int(time.Since(started).Seconds()),
		})
	})

	r.GET("/metrics", gin.WrapH(m.Handler()))

	return r
}

func respond(c *gin.Context, messageID string, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{OK: true, MessageID: messageID})
}

func respondError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.APIResponse{OK: false, Error: err.Error()})
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)

		start := time.Now()
		c.Next()

		logger.Info("http request",
			slog.String("request_id", id),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// The browser demo app calls the relay directly, so every origin is allowed.
func allowAllOrigins() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
