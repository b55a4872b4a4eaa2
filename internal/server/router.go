package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront-backend/internal/auth"
	carthandler "storefront-backend/internal/cart/handler"
	checkouthandler "storefront-backend/internal/checkout/handler"
	"storefront-backend/internal/middleware"
	orderhandler "storefront-backend/internal/order/handler"
	producthandler "storefront-backend/internal/product/handler"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         *zap.Logger
	Verifier       *auth.Verifier
	AllowedOrigins []string
	Health         HealthChecker

	Products  *producthandler.ProductHandler
	Carts     *carthandler.CartHandler
	Orders    *orderhandler.OrderHandler
	Checkouts *checkouthandler.CheckoutHandler
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(d.Logger),
		middleware.Prometheus(),
		middleware.ErrorHandler(d.Logger),
		middleware.Recovery(d.Logger),
		cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	r.GET("/health", health(d.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.Authenticate(d.Verifier))
	{
		api.GET("/products", d.Products.ListProducts)
		api.GET("/products/:id", d.Products.GetProduct)

		cart := api.Group("/cart")
		cart.GET("", d.Carts.GetCart)
		cart.POST("", d.Carts.AddItem)
		cart.PUT("", d.Carts.UpdateItem)
		cart.DELETE("", d.Carts.RemoveItem)
		cart.POST("/clear", d.Carts.ClearCart)
		cart.POST("/merge", middleware.RequireAuth(), d.Carts.MergeGuestCart)

		user := api.Group("", middleware.RequireAuth())
		user.POST("/orders", d.Orders.PlaceOrder)
		user.GET("/orders/my-order", d.Orders.GetMyOrders)
		user.GET("/orders/:id", d.Orders.GetOrder)
		user.POST("/checkout", d.Checkouts.Checkout)
		user.GET("/checkout/:id", d.Checkouts.GetCheckout)

		admin := api.Group("/admin", middleware.RequireAdmin(d.Verifier))
		admin.POST("/products", d.Products.CreateProduct)
		admin.PUT("/products/:id", d.Products.UpdateProduct)
		admin.DELETE("/products/:id", d.Products.DeleteProduct)
		admin.GET("/orders", d.Orders.ListOrders)
		admin.PUT("/orders/:id/status", d.Orders.UpdateStatus)
		admin.PUT("/orders/:id/pay", d.Orders.UpdatePayment)
		admin.DELETE("/orders/:id", d.Orders.DeleteOrder)
	}

	return r
}

func health(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
