package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"foodMarketplace/internal/service"
	"foodMarketplace/models"
)

func (s *Server) handleCreateOrder(c *gin.Context) {
	var in service.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "VALIDATION", "message": err.Error()},
		})
		return
	}
	order, err := s.orders.CreateOrder(c.Request.Context(), s.actor(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) handleGetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.orders.GetOrder(c.Request.Context(), s.actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleListOrders(c *gin.Context) {
	var f service.ListFilter
	if raw := c.Query("status"); raw != "" {
		for _, st := range strings.Split(raw, ",") {
			f.Statuses = append(f.Statuses, models.OrderStatus(st))
		}
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "VALIDATION", "message": "limit must be a non-negative integer"},
			})
			return
		}
		f.Limit = n
	}
	orders, err := s.orders.ListOrders(c.Request.Context(), s.actor(c), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) handleAcceptOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.orders.AcceptOrder(c.Request.Context(), s.actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleRejectOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.orders.RejectOrder(c.Request.Context(), s.actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) handleUpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "VALIDATION", "message": "status is required"},
		})
		return
	}
	order, err := s.orders.UpdateOrderStatus(c.Request.Context(), s.actor(c), id, models.OrderStatus(req.Status))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := s.orders.CancelOrder(c.Request.Context(), s.actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type assignDriverRequest struct {
	DriverID int64 `json:"driver_id" binding:"required"`
}

func (s *Server) handleAssignDriver(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "VALIDATION", "message": "driver_id is required"},
		})
		return
	}
	delivery, err := s.deliveries.AssignDriver(c.Request.Context(), s.actor(c), id, req.DriverID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, delivery)
}

func (s *Server) handleListDeliveries(c *gin.Context) {
	list, err := s.deliveries.ListMyDeliveries(c.Request.Context(), s.actor(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if list == nil {
		list = []models.Delivery{}
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": list})
}

func (s *Server) handleAcceptDelivery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	delivery, err := s.deliveries.AcceptDelivery(c.Request.Context(), s.actor(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

func (s *Server) handleUpdateDeliveryStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "VALIDATION", "message": "status is required"},
		})
		return
	}
	delivery, err := s.deliveries.UpdateDeliveryStatus(c.Request.Context(), s.actor(c), id, models.DeliveryStatus(req.Status))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

func (s *Server) handleRestaurantStats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	stats, err := s.stats.RestaurantStats(c.Request.Context(), s.actor(c), id, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
