package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-backend/internal/httpx"
	"storefront-backend/internal/product"
	"storefront-backend/internal/product/dto"
)

type ProductHandler struct {
	uc     product.UseCase
	logger *zap.Logger
}

func NewProductHandler(uc product.UseCase, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

// ListProducts serves the public catalog: active and published products only.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	filters := &dto.ProductFilters{
		Category:      c.Query("category"),
		SearchQuery:   c.Query("search"),
		SortBy:        c.Query("sort"),
		PublishedOnly: true,
		Page:          page,
		PageSize:      limit,
	}

	products, total, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.logger.Debug("catalog listed",
		zap.String("category", filters.Category),
		zap.String("search", filters.SearchQuery),
		zap.Int("page", filters.Page),
		zap.Int("total", total),
	)

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     filters.Page,
		"limit":    filters.PageSize,
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := httpx.ObjectIDParam(c, "id", "product")
	if err != nil {
		_ = c.Error(err)
		return
	}

	p, err := h.uc.GetProduct(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input dto.CreateProductInput
	if err := httpx.BindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := httpx.ObjectIDParam(c, "id", "product")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var input dto.UpdateProductInput
	if err := httpx.BindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	p, err := h.uc.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := httpx.ObjectIDParam(c, "id", "product")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.uc.DeleteProduct(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}
