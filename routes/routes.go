package routes

import (
	"log/slog"
	"net/http"
	"time"

	"gramsetu-be/config"
	"gramsetu-be/controllers"
	"gramsetu-be/middlewares"
	"gramsetu-be/notify"
	"gramsetu-be/services"
	"gramsetu-be/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config config.Config
	Store  *store.Store
	Hub    *notify.Hub
	// RateCounter backs the submission limiter; nil disables it.
	RateCounter middlewares.Counter
}

// Setup registers middleware and every route on r.
func Setup(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	var notifier notify.Notifier = notify.Discard{}
	if d.Hub != nil {
		notifier = d.Hub
		SocketRoutes(r, d.Hub, d.Config.CORSOrigins)
	}

	AuthRoutes(r, controllers.NewAuthController(d.Store.Users, d.Config), d.Config.JWTSecret)

	var limiter gin.HandlerFunc
	if d.RateCounter != nil {
		limiter = middlewares.IssueRateLimiter(d.RateCounter, d.Config.IssueLimitPrefix, d.Config.IssueDailyLimit)
	} else {
		slog.Warn("issue rate limiting disabled: Redis not configured")
	}

	IssueRoutes(r, IssueHandlers{
		Issues:    controllers.NewIssueController(services.NewIssueService(d.Store, notifier), d.Config.RequestTimeout),
		GramSevak: controllers.NewGramSevakController(services.NewAssignmentService(d.Store), d.Config.RequestTimeout),
		Secret:    d.Config.JWTSecret,
		Limiter:   limiter,
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
