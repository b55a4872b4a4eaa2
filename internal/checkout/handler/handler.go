package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/checkout"
	"storefront-backend/internal/checkout/dto"
	"storefront-backend/internal/httpx"
	"storefront-backend/internal/middleware"
)

type CheckoutHandler struct {
	uc       checkout.UseCase
	verifier *auth.Verifier
	logger   *zap.Logger
}

func NewCheckoutHandler(uc checkout.UseCase, verifier *auth.Verifier, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		uc:       uc,
		verifier: verifier,
		logger:   log,
	}
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.Unauthorized("missing token"))
		return
	}

	var input dto.CheckoutInput
	if err := httpx.BindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	co, o, err := h.uc.Checkout(c.Request.Context(), id.UserID, &input)
	middleware.RecordOrderOperation("checkout", err == nil)
	if err != nil {
		if apperror.Is(err, apperror.KindStock) {
			middleware.RecordStockConflict()
		}
		fields := []zap.Field{
			zap.String("user_id", id.UserID.Hex()),
			zap.String("request_id", middleware.RequestIDFrom(c)),
			zap.Error(err),
		}
		if co != nil {
			fields = append(fields, zap.String("checkout_id", co.ID.Hex()))
		}
		h.logger.Info("checkout rejected", fields...)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"checkout": co,
		"order":    o,
	})
}

func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	caller, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.Unauthorized("missing token"))
		return
	}
	id, err := httpx.ObjectIDParam(c, "id", "checkout")
	if err != nil {
		_ = c.Error(err)
		return
	}

	co, err := h.uc.GetCheckout(c.Request.Context(), id, caller, h.verifier.IsAdmin(caller))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, co)
}
