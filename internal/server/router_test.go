package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/auth"
	carthandler "storefront-backend/internal/cart/handler"
	cartusecase "storefront-backend/internal/cart/usecase"
	checkouthandler "storefront-backend/internal/checkout/handler"
	checkoutusecase "storefront-backend/internal/checkout/usecase"
	"storefront-backend/internal/events"
	"storefront-backend/internal/model"
	orderhandler "storefront-backend/internal/order/handler"
	orderusecase "storefront-backend/internal/order/usecase"
	producthandler "storefront-backend/internal/product/handler"
	productusecase "storefront-backend/internal/product/usecase"
	"storefront-backend/internal/store/memstore"
)

const secret = "router-secret"

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type testServer struct {
	handler  http.Handler
	products *memstore.ProductRepository
	carts    *memstore.CartRepository
	orders   *memstore.OrderRepository
}

func newTestServer(t *testing.T, health HealthChecker) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	verifier := auth.NewVerifier(secret, "admin")

	products := memstore.NewProductRepository()
	carts := memstore.NewCartRepository()
	orders := memstore.NewOrderRepository()
	checkouts := memstore.NewCheckoutRepository()

	orderUC := orderusecase.NewOrderUseCase(orders, products, carts, events.NopPublisher{}, log)
	router := NewRouter(Deps{
		Logger:         log,
		Verifier:       verifier,
		AllowedOrigins: []string{"http://localhost:5173"},
		Health:         health,
		Products:       producthandler.NewProductHandler(productusecase.NewProductUseCase(products, log), log),
		Carts:          carthandler.NewCartHandler(cartusecase.NewCartUseCase(carts, products, log), log),
		Orders:         orderhandler.NewOrderHandler(orderUC, verifier, log),
		Checkouts: checkouthandler.NewCheckoutHandler(
			checkoutusecase.NewCheckoutUseCase(checkouts, carts, orderUC, log), verifier, log),
	})

	return &testServer{handler: router, products: products, carts: carts, orders: orders}
}

func bearer(t *testing.T, userID primitive.ObjectID, role string) string {
	t.Helper()
	claims := auth.Claims{
		UserID:         userID.Hex(),
		Role:           role,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func shippingAddress() map[string]any {
	return map[string]any{
		"firstName":  "Ada",
		"lastName":   "Lovelace",
		"address":    "1 Analytical Way",
		"city":       "London",
		"postalCode": "N1 7AA",
		"country":    "UK",
		"phone":      "+44 20 0000 0000",
	}
}

func TestGuestToOrderScenario(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	p := &model.Product{
		Name:        "Linen Shirt",
		Price:       decimal.RequireFromString("10.00"),
		Stock:       5,
		IsActive:    true,
		IsPublished: true,
	}
	require.NoError(t, s.products.Create(ctx, p))
	uid := primitive.NewObjectID()
	token := bearer(t, uid, "customer")

	w, cart := s.do(t, http.MethodPost, "/api/cart", "", map[string]any{
		"productId": p.ID.Hex(),
		"size":      "M",
		"color":     map[string]any{"name": "Red", "hex": "#ff0000"},
		"quantity":  "2",
		"guestId":   "guest-42",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 20, cart["totalPrice"])

	w, cart = s.do(t, http.MethodGet, "/api/cart?guestId=guest-42", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, cart["products"], 1)

	w, cart = s.do(t, http.MethodPost, "/api/cart/merge", token, map[string]any{"guestId": "guest-42"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, uid.Hex(), cart["user"])
	assert.Equal(t, 1, s.carts.Len(), "guest cart re-owned, not copied")

	w, order := s.do(t, http.MethodPost, "/api/orders", token, map[string]any{
		"orderItems": []map[string]any{{
			"productId": p.ID.Hex(),
			"quantity":  2,
			"size":      "M",
			"color":     map[string]any{"name": "Red", "hex": "#ff0000"},
		}},
		"shippingAddress": shippingAddress(),
		"paymentMethod":   "Cash on Delivery",
		"totalPrice":      20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Processing", order["orderStatus"])
	assert.Equal(t, false, order["isPaid"])
	assert.EqualValues(t, 20, order["totalPrice"])

	stored, err := s.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)

	w, cart = s.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cart["products"])
	assert.EqualValues(t, 0, cart["totalPrice"])

	orderID := order["id"].(string)
	w, _ = s.do(t, http.MethodGet, "/api/orders/"+orderID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/orders/"+orderID, bearer(t, primitive.NewObjectID(), "customer"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/my-order", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)
}

func TestMyOrdersEmptyIsOK(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/orders/my-order", nil)
	req.Header.Set("Authorization", bearer(t, primitive.NewObjectID(), "customer"))
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestRouteProtection(t *testing.T) {
	s := newTestServer(t, nil)
	customer := bearer(t, primitive.NewObjectID(), "customer")
	admin := bearer(t, primitive.NewObjectID(), "admin")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"public catalog", http.MethodGet, "/api/products", "", http.StatusOK},
		{"expired or bad token", http.MethodGet, "/api/products", "Bearer junk", http.StatusUnauthorized},
		{"cart without owner", http.MethodGet, "/api/cart", "", http.StatusBadRequest},
		{"merge needs token", http.MethodPost, "/api/cart/merge", "", http.StatusUnauthorized},
		{"orders need token", http.MethodGet, "/api/orders/my-order", "", http.StatusUnauthorized},
		{"admin list as customer", http.MethodGet, "/api/admin/orders", customer, http.StatusForbidden},
		{"admin list as admin", http.MethodGet, "/api/admin/orders", admin, http.StatusOK},
		{"malformed order id", http.MethodGet, "/api/orders/xyz", customer, http.StatusNotFound},
		{"missing order", http.MethodGet, "/api/orders/" + primitive.NewObjectID().Hex(), customer, http.StatusNotFound},
		{"empty checkout", http.MethodPost, "/api/checkout", customer, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body any
			if tt.method == http.MethodPost {
				body = map[string]any{"shippingAddress": shippingAddress(), "paymentMethod": "cod"}
			}
			w, _ := s.do(t, tt.method, tt.path, tt.token, body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestAdminOrderLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	p := &model.Product{Name: "Hat", Price: decimal.NewFromInt(4), Stock: 2, IsActive: true, IsPublished: true}
	require.NoError(t, s.products.Create(ctx, p))

	uid := primitive.NewObjectID()
	customer := bearer(t, uid, "customer")
	admin := bearer(t, primitive.NewObjectID(), "admin")

	w, _ := s.do(t, http.MethodPost, "/api/cart", customer, map[string]any{"productId": p.ID.Hex(), "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body := s.do(t, http.MethodPost, "/api/checkout", customer, map[string]any{
		"shippingAddress": shippingAddress(),
		"paymentMethod":   "card",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := body["order"].(map[string]any)
	checkout := body["checkout"].(map[string]any)
	assert.Equal(t, true, order["isPaid"])
	assert.Equal(t, true, checkout["isFinalized"])

	w, _ = s.do(t, http.MethodGet, "/api/checkout/"+checkout["id"].(string), customer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	path := "/api/admin/orders/" + order["id"].(string)
	w, updated := s.do(t, http.MethodPut, path+"/status", admin, map[string]any{"orderStatus": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Shipped", updated["orderStatus"])

	w, errBody := s.do(t, http.MethodPut, path+"/status", admin, map[string]any{"orderStatus": "Processing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "orderStatus", errBody["field"])

	w, updated = s.do(t, http.MethodPut, path+"/pay", admin, map[string]any{"isPaid": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", updated["paymentStatus"])

	w, _ = s.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.orders.Len())
}

func TestInsufficientStockResponse(t *testing.T) {
	s := newTestServer(t, nil)
	p := &model.Product{Name: "Rare", Price: decimal.NewFromInt(100), Stock: 1}
	require.NoError(t, s.products.Create(context.Background(), p))

	w, body := s.do(t, http.MethodPost, "/api/orders", bearer(t, primitive.NewObjectID(), "customer"), map[string]any{
		"orderItems":      []map[string]any{{"productId": p.ID.Hex(), "quantity": 2}},
		"shippingAddress": shippingAddress(),
		"paymentMethod":   "cod",
		"totalPrice":      200,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := body["details"].(map[string]any)
	assert.Equal(t, "Rare", details["name"])
	assert.EqualValues(t, 1, details["available"])
	assert.EqualValues(t, 2, details["requested"])
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	w, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")

	down := newTestServer(t, pingFunc(func(context.Context) error { return errors.New("no primary") }))
	w, _ = down.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
