package http

import (
	"errors"
	"net/http"
	"strconv"

	"purchase-order-service/internal/domain"
	"purchase-order-service/internal/infra/idempotency"
	"purchase-order-service/internal/logger"
	"purchase-order-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type Handler struct {
	service *services.OrderService
	idem    idempotency.Store
}

// NewHandler wires the order endpoints. idem may be nil, in which case Idempotency-Key
// headers are ignored.
func NewHandler(u *services.OrderService, idem idempotency.Store) *Handler {
	return &Handler{service: u, idem: idem}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	orders := r.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/:orderId", h.GetOrder)
	orders.PUT("/:orderId/status", h.UpdateOrderStatus)
	orders.GET("/status/:status", h.GetOrdersByStatus)
	orders.GET("/profit", h.ProfitOfCompletedOrders)
	orders.GET("/profit/monthly", h.TotalProfitByMonth)
	orders.GET("/profit/monthly/export", h.ExportProfitByMonth)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.service.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.service.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if order == nil {
		writeError(c, domain.NotFound("order %s not found", id))
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrdersByStatus(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("status"))
	if err != nil {
		writeError(c, domain.InvalidArgument("status", "status must be an integer code"))
		return
	}

	orders, err := h.service.GetOrdersByStatus(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.InvalidArgument("status", "%s", err.Error()))
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Request.Context(), id, *req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	if order == nil {
		writeError(c, domain.NotFound("order %s not found", id))
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.InvalidArgument("order", "%s", err.Error()))
		return
	}

	order, err := req.toDomain()
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := c.GetHeader(IdempotencyKeyHeader)
	if key != "" && h.idem != nil {
		reserved, err := h.idem.Reserve(ctx, key)
		if err != nil {
			writeError(c, domain.Storage("reserve idempotency key", err))
			return
		}
		if !reserved {
			prev, err := h.idem.Lookup(ctx, key)
			if err != nil {
				writeError(c, domain.Storage("lookup idempotency key", err))
				return
			}
			c.JSON(http.StatusConflict, gin.H{
				"error": "request with this idempotency key was already processed",
				"id":    prev,
			})
			return
		}
	}

	result, err := h.service.CreateOrder(ctx, order)
	if err != nil {
		if key != "" && h.idem != nil {
			if rerr := h.idem.Release(ctx, key); rerr != nil {
				logger.FromContext(ctx).Warn("failed to release idempotency key", zap.Error(rerr))
			}
		}
		writeError(c, err)
		return
	}
	if key != "" && h.idem != nil {
		if cerr := h.idem.Complete(ctx, key, result.OrderID.String()); cerr != nil {
			logger.FromContext(ctx).Warn("failed to record idempotency key", zap.Error(cerr))
		}
	}

	status := http.StatusCreated
	if !result.Verified {
		status = http.StatusAccepted
	}
	c.JSON(status, CreateOrderResponse{ID: result.OrderID, Verified: result.Verified})
}

func (h *Handler) ProfitOfCompletedOrders(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}
	rows, err := h.service.ProfitOfCompletedOrders(c.Request.Context(), &year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfitResponse[domain.OrderProfit]{TargetYear: year, Orders: rows})
}

func (h *Handler) TotalProfitByMonth(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}
	totals, err := h.service.TotalProfitByMonth(c.Request.Context(), &year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfitResponse[domain.TotalProfit]{TargetYear: year, Orders: totals})
}

func (h *Handler) ExportProfitByMonth(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	rows, err := h.service.ProfitOfCompletedOrders(ctx, &year)
	if err != nil {
		writeError(c, err)
		return
	}
	totals, err := h.service.TotalProfitByMonth(ctx, &year)
	if err != nil {
		writeError(c, err)
		return
	}

	f, err := profitWorkbook(rows, totals)
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="profit-`+strconv.Itoa(year)+`.xlsx"`)
	c.Header("Content-Transfer-Encoding", "binary")
	if err := f.Write(c.Writer); err != nil {
		logger.FromContext(ctx).Error("failed to write profit export", zap.Error(err))
	}
}

func parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		writeError(c, domain.InvalidArgument("orderId", "orderId must be a valid uuid"))
		return uuid.Nil, false
	}
	return id, true
}

// parseYear reads the optional year query parameter. It defaults to the service's
// current year so responses can echo the year actually used.
func (h *Handler) parseYear(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return h.service.CurrentYear(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeError(c, domain.InvalidArgument("year", "year must be an integer"))
		return 0, false
	}
	return year, true
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	resp := ErrorResponse{Error: err.Error(), RequestID: logger.RequestIDFromContext(ctx)}

	var de *domain.Error
	if errors.As(err, &de) {
		resp.Field = de.Field
	}
	status := statusFor(domain.CodeOf(err))
	if status >= http.StatusInternalServerError {
		logger.FromContext(ctx).Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.AbortWithStatusJSON(status, resp)
}
