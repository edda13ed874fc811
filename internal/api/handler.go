package api

import (
	"net/http"
	"strconv"
	"time"

	"cod-dashboard/internal/analytics"
	"cod-dashboard/internal/service"
	"cod-dashboard/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService     *service.OrderService
	dashboardService *service.DashboardService
	customerService  *service.CustomerService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	dashboardService *service.DashboardService,
	customerService *service.CustomerService,
) *Handler {
	return &Handler{
		orderService:     orderService,
		dashboardService: dashboardService,
		customerService:  customerService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.PATCH("/orders/:id", h.updateOrder)
		v1.DELETE("/orders/:id", h.deleteOrder)
		v1.POST("/orders/:id/status", h.applyStatus)

		v1.GET("/dashboard", h.getDashboard)

		v1.GET("/customers/risk", h.listCustomerRisk)
		v1.GET("/customers/:phone/risk", h.getCustomerRisk)

		v1.GET("/blacklist", h.listBlacklist)
		v1.POST("/blacklist", h.addToBlacklist)
		v1.DELETE("/blacklist/:phone", h.removeFromBlacklist)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// listOrders handles listing orders for a symbolic date range
func (h *Handler) listOrders(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	dateRange := analytics.ResolveRange(
		analytics.RangeKind(c.DefaultQuery("range", string(analytics.RangeLastWeek))),
		c.Query("from"),
		c.Query("to"),
		time.Now(),
	)

	orders, err := h.orderService.ListOrders(c.Request.Context(), userID, dateRange.From, dateRange.To)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list orders",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"range":  dateRange,
		"orders": orders,
	})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	orderID, ok := orderIDFrom(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

// updateOrder handles partial order edits
func (h *Handler) updateOrder(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	orderID, ok := orderIDFrom(c)
	if !ok {
		return
	}

	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), userID, orderID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

// deleteOrder handles order deletion
func (h *Handler) deleteOrder(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	orderID, ok := orderIDFrom(c)
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), userID, orderID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Failed to delete order",
			"details": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// applyStatus handles lifecycle transitions
func (h *Handler) applyStatus(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	orderID, ok := orderIDFrom(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orderService.ApplyStatus(c.Request.Context(), userID, orderID, req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to apply status",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

// getDashboard handles the analytics snapshot
func (h *Handler) getDashboard(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(
		c.Request.Context(),
		userID,
		analytics.RangeKind(c.DefaultQuery("range", string(analytics.RangeLastWeek))),
		c.Query("from"),
		c.Query("to"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute dashboard",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// listCustomerRisk handles the customer risk listing
func (h *Handler) listCustomerRisk(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	records, err := h.customerService.ListCustomerRisk(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute customer risk",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": records})
}

// getCustomerRisk handles a single customer replay
func (h *Handler) getCustomerRisk(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	record, err := h.customerService.GetCustomerRisk(c.Request.Context(), userID, c.Param("phone"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute customer risk",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// listBlacklist handles listing blacklist entries
func (h *Handler) listBlacklist(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	entries, err := h.customerService.ListBlacklist(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list blacklist",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blacklist": entries})
}

// addToBlacklist handles blacklisting a phone
func (h *Handler) addToBlacklist(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var req struct {
		Phone  string `json:"phone" binding:"required"`
		Reason string `json:"reason,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	entry, err := h.customerService.Blacklist(c.Request.Context(), userID, req.Phone, req.Reason)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to blacklist phone",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// removeFromBlacklist handles removing a phone from the blacklist
func (h *Handler) removeFromBlacklist(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	if err := h.customerService.Unblacklist(c.Request.Context(), userID, c.Param("phone")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to remove phone from blacklist",
			"details": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// userIDFrom reads the acting user from the X-User-ID header (query
// fallback). Authentication proper is handled upstream.
func userIDFrom(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		raw = c.Query("user_id")
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid user ID"})
		return 0, false
	}
	return userID, true
}

func orderIDFrom(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return orderID, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
