// Package api is the thin HTTP surface over the service facades. There
// is no business logic here: handlers bind input, hand the actor and
// the request to a service, and translate errors to status codes.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"foodMarketplace/internal/auth"
	"foodMarketplace/internal/service"
)

// Server bundles the facades behind a gin router.
type Server struct {
	router     *gin.Engine
	orders     *service.OrderService
	deliveries *service.DeliveryService
	stats      *service.StatsService
	jwtSecret  string
	log        *slog.Logger
}

func NewServer(orders *service.OrderService, deliveries *service.DeliveryService,
	stats *service.StatsService, jwtSecret string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		router:     gin.New(),
		orders:     orders,
		deliveries: deliveries,
		stats:      stats,
		jwtSecret:  jwtSecret,
		log:        log,
	}
	s.router.Use(gin.Recovery(), s.requestID())
	s.setupRoutes()
	return s
}

// Router returns the gin engine, also usable directly with httptest.
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api", s.authRequired())
	{
		api.POST("/orders", s.handleCreateOrder)
		api.GET("/orders", s.handleListOrders)
		api.GET("/orders/:id", s.handleGetOrder)
		api.POST("/orders/:id/accept", s.handleAcceptOrder)
		api.POST("/orders/:id/reject", s.handleRejectOrder)
		api.PATCH("/orders/:id/status", s.handleUpdateOrderStatus)
		api.POST("/orders/:id/cancel", s.handleCancelOrder)
		api.POST("/orders/:id/driver", s.handleAssignDriver)

		api.GET("/deliveries", s.handleListDeliveries)
		api.POST("/deliveries/:id/accept", s.handleAcceptDelivery)
		api.PATCH("/deliveries/:id/status", s.handleUpdateDeliveryStatus)

		api.GET("/restaurants/:id/stats", s.handleRestaurantStats)
	}
}

// requestID tags every request for log correlation.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// authRequired resolves the actor from the Authorization header and
// stores it on the request context for the services.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := auth.ParseBearer(c.GetHeader("Authorization"), s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "NOT_AUTHENTICATED", "message": "authentication required"},
			})
			return
		}
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}
