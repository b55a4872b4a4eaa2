package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/httpx"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/order"
	"storefront-backend/internal/order/dto"
)

type OrderHandler struct {
	uc       order.UseCase
	verifier *auth.Verifier
	logger   *zap.Logger
}

func NewOrderHandler(uc order.UseCase, verifier *auth.Verifier, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		uc:       uc,
		verifier: verifier,
		logger:   log,
	}
}

// recordOperation counts the outcome once the handler has written its response.
func (h *OrderHandler) recordOperation(c *gin.Context, operation string) {
	status := c.Writer.Status()
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("request_id", middleware.RequestIDFrom(c)),
	}
	if id, ok := middleware.IdentityFrom(c); ok {
		fields = append(fields, zap.String("actor_id", id.UserID.Hex()))
	}
	if len(c.Errors) > 0 {
		err := c.Errors.Last().Err
		status = apperror.StatusCode(err)
		if apperror.Is(err, apperror.KindStock) {
			middleware.RecordStockConflict()
		}
		fields = append(fields, zap.Error(err))
	}
	ok := status >= 200 && status < 300
	middleware.RecordOrderOperation(operation, ok)

	fields = append(fields, zap.Int("status", status))
	if ok {
		h.logger.Debug("order operation", fields...)
	} else {
		h.logger.Info("order operation rejected", fields...)
	}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	defer h.recordOperation(c, "create")

	id, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.Unauthorized("missing token"))
		return
	}

	var input dto.PlaceOrderInput
	if err := httpx.BindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	o, err := h.uc.PlaceOrder(c.Request.Context(), id.UserID, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.Unauthorized("missing token"))
		return
	}

	orders, err := h.uc.GetMyOrders(c.Request.Context(), id.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	caller, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.Unauthorized("missing token"))
		return
	}
	id, err := httpx.ObjectIDParam(c, "id", "order")
	if err != nil {
		_ = c.Error(err)
		return
	}

	o, err := h.uc.GetOrder(c.Request.Context(), id, caller, h.verifier.IsAdmin(caller))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.uc.ListOrders(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	defer h.recordOperation(c, "update_status")

	id, err := httpx.ObjectIDParam(c, "id", "order")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var input dto.StatusInput
	if err := httpx.BindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	o, err := h.uc.UpdateStatus(c.Request.Context(), id, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	defer h.recordOperation(c, "update_payment")

	id, err := httpx.ObjectIDParam(c, "id", "order")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var input dto.PaymentInput
	if err := httpx.BindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	o, err := h.uc.UpdatePayment(c.Request.Context(), id, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	defer h.recordOperation(c, "delete")

	id, err := httpx.ObjectIDParam(c, "id", "order")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.uc.DeleteOrder(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order removed"})
}
