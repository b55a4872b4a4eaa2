package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/cart/dto"
	"storefront-backend/internal/httpx"
	"storefront-backend/internal/middleware"
)

type CartHandler struct {
	uc     cart.UseCase
	logger *zap.Logger
}

func NewCartHandler(uc cart.UseCase, log *zap.Logger) *CartHandler {
	return &CartHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	owner, err := h.resolveOwner(c, "")
	if err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.uc.GetCart(c.Request.Context(), owner)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var input dto.ItemInput
	owner, ok := h.bindItem(c, &input)
	if !ok {
		return
	}

	result, err := h.uc.AddItem(c.Request.Context(), owner, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var input dto.ItemInput
	owner, ok := h.bindItem(c, &input)
	if !ok {
		return
	}

	result, err := h.uc.UpdateItem(c.Request.Context(), owner, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	var input dto.ItemInput
	owner, ok := h.bindItem(c, &input)
	if !ok {
		return
	}

	result, err := h.uc.RemoveItem(c.Request.Context(), owner, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	owner, err := h.resolveOwner(c, "")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.uc.ClearCart(c.Request.Context(), owner); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.Unauthorized("missing token"))
		return
	}

	var input dto.MergeInput
	if err := httpx.BindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.uc.MergeGuestCart(c.Request.Context(), id.UserID, input.GuestID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CartHandler) bindItem(c *gin.Context, input *dto.ItemInput) (auth.CartOwner, bool) {
	if err := httpx.BindJSON(c, input); err != nil {
		_ = c.Error(err)
		return auth.CartOwner{}, false
	}
	owner, err := h.resolveOwner(c, input.GuestID)
	if err != nil {
		_ = c.Error(err)
		return auth.CartOwner{}, false
	}
	return owner, true
}

// resolveOwner prefers the authenticated user and falls back to the guest id from
// the body or the query string.
func (h *CartHandler) resolveOwner(c *gin.Context, bodyGuestID string) (auth.CartOwner, error) {
	owner, err := ownerOf(c, bodyGuestID)
	if err != nil {
		return owner, err
	}
	h.logger.Debug("cart owner resolved",
		zap.String("owner", owner.String()),
		zap.String("request_id", middleware.RequestIDFrom(c)),
	)
	return owner, nil
}

func ownerOf(c *gin.Context, bodyGuestID string) (auth.CartOwner, error) {
	if id, ok := middleware.IdentityFrom(c); ok {
		return auth.UserOwner(id.UserID), nil
	}
	guestID := strings.TrimSpace(bodyGuestID)
	if guestID == "" {
		guestID = strings.TrimSpace(c.Query("guestId"))
	}
	if guestID == "" {
		return auth.CartOwner{}, apperror.Validation("guestId", "guestId is required without a token")
	}
	return auth.GuestOwner(guestID), nil
}
