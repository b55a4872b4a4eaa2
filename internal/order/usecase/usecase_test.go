package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/internal/apperror"
	"storefront-backend/internal/auth"
	cartdto "storefront-backend/internal/cart/dto"
	"storefront-backend/internal/events"
	"storefront-backend/internal/httpx"
	"storefront-backend/internal/model"
	"storefront-backend/internal/order"
	"storefront-backend/internal/order/dto"
	"storefront-backend/internal/store/memstore"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type failingOrders struct {
	*memstore.OrderRepository
}

func (failingOrders) Create(context.Context, *model.Order) error {
	return errors.New("write concern timeout")
}

// staleOrders serves a fixed read so the conditional write sees a status that has
// since moved on.
type staleOrders struct {
	*memstore.OrderRepository
	snapshot *model.Order
}

func (s *staleOrders) FindByID(context.Context, primitive.ObjectID) (*model.Order, error) {
	o := *s.snapshot
	return &o, nil
}

func orderStatusUpdate(from, to model.OrderStatus) order.StatusUpdate {
	return order.StatusUpdate{From: from, To: to, UpdatedAt: time.Now()}
}

type fixture struct {
	uc        *orderUseCase
	orders    *memstore.OrderRepository
	products  *memstore.ProductRepository
	carts     *memstore.CartRepository
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:    memstore.NewOrderRepository(),
		products:  memstore.NewProductRepository(),
		carts:     memstore.NewCartRepository(),
		publisher: &recordingPublisher{},
	}
	f.uc = NewOrderUseCase(f.orders, f.products, f.carts, f.publisher, zap.NewNop()).(*orderUseCase)
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Images: []model.Image{{URL: "https://img.example/" + name + ".jpg"}},
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func address() *model.ShippingAddress {
	return &model.ShippingAddress{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Address:    "1 Analytical Way",
		City:       "London",
		PostalCode: "N1 7AA",
		Country:    "UK",
		Phone:      "+44 20 0000 0000",
	}
}

func line(p *model.Product, qty int) dto.OrderItemInput {
	return dto.OrderItemInput{
		ProductID: p.ID.Hex(),
		Quantity:  httpx.NewInt(qty),
		Size:      "M",
		Color:     cartdto.ColorInput{Name: "Red", Hex: "#ff0000"},
	}
}

func request(total string, lines ...dto.OrderItemInput) *dto.PlaceOrderInput {
	return &dto.PlaceOrderInput{
		OrderItems:      lines,
		ShippingAddress: address(),
		PaymentMethod:   model.PaymentMethodCOD,
		TotalPrice:      decimal.NewNullDecimal(decimal.RequireFromString(total)),
	}
}

func TestPlaceOrderCashOnDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := primitive.NewObjectID()
	p := f.product(t, "shirt", "10.00", 5)

	require.NoError(t, f.carts.Save(ctx, &model.Cart{UserID: &uid, Products: []model.CartItem{{ProductID: p.ID, Quantity: 2}}}))

	o, err := f.uc.PlaceOrder(ctx, uid, request("20.00", line(p, 2)))
	require.NoError(t, err)

	assert.Equal(t, model.StatusProcessing, o.OrderStatus)
	assert.False(t, o.IsPaid)
	assert.Nil(t, o.PaidAt)
	assert.Equal(t, model.PaymentPending, o.PaymentStatus)
	assert.Equal(t, "20.00", o.TotalPrice.StringFixed(2))
	assert.Equal(t, uid, o.UserID)
	require.Len(t, o.OrderItems, 1)
	assert.Equal(t, "shirt", o.OrderItems[0].Name)
	assert.Equal(t, "m", o.OrderItems[0].Size)
	assert.Equal(t, model.Color{Name: "Red", Hex: "#ff0000"}, o.OrderItems[0].Color)

	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.Equal(t, 0, f.carts.Len(), "cart cleared")
	assert.Equal(t, []events.Type{events.OrderCreated}, f.publisher.types())
}

func TestPlaceOrderPrepaid(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "shirt", "10.00", 5)
	in := request("10.00", line(p, 1))
	in.PaymentMethod = "card"

	o, err := f.uc.PlaceOrder(context.Background(), primitive.NewObjectID(), in)
	require.NoError(t, err)

	assert.True(t, o.IsPaid)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, model.PaymentPaid, o.PaymentStatus)
}

func TestPlaceOrderRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "shirt", "40.00", 5)
	p.Discount = decimal.NewFromInt(25)
	require.NoError(t, f.products.Update(context.Background(), p))

	o, err := f.uc.PlaceOrder(context.Background(), primitive.NewObjectID(), request("1.00", line(p, 2)))
	require.NoError(t, err)

	assert.Equal(t, "60.00", o.TotalPrice.StringFixed(2))
	assert.Equal(t, "30.00", o.OrderItems[0].Price.StringFixed(2))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "shirt", "10.00", 5)

	tests := []struct {
		name  string
		mut   func(in *dto.PlaceOrderInput)
		field string
	}{
		{"no items", func(in *dto.PlaceOrderInput) { in.OrderItems = nil }, "orderItems"},
		{"missing product id", func(in *dto.PlaceOrderInput) { in.OrderItems[0].ProductID = "" }, "orderItems[0].productId"},
		{"zero quantity", func(in *dto.PlaceOrderInput) { in.OrderItems[0].Quantity = httpx.NewInt(0) }, "orderItems[0].quantity"},
		{"missing quantity", func(in *dto.PlaceOrderInput) { in.OrderItems[0].Quantity = httpx.Int{} }, "orderItems[0].quantity"},
		{"quantity above line limit", func(in *dto.PlaceOrderInput) {
			in.OrderItems[0].Quantity = httpx.NewInt(model.MaxLineQuantity + 1)
		}, "orderItems[0].quantity"},
		{"no address", func(in *dto.PlaceOrderInput) { in.ShippingAddress = nil }, "shippingAddress"},
		{"no phone", func(in *dto.PlaceOrderInput) { in.ShippingAddress.Phone = "" }, "shippingAddress.phone"},
		{"no postal code", func(in *dto.PlaceOrderInput) { in.ShippingAddress.PostalCode = "" }, "shippingAddress.postalCode"},
		{"no payment method", func(in *dto.PlaceOrderInput) { in.PaymentMethod = "" }, "paymentMethod"},
		{"blank payment method", func(in *dto.PlaceOrderInput) { in.PaymentMethod = "   " }, "paymentMethod"},
		{"no total", func(in *dto.PlaceOrderInput) { in.TotalPrice = decimal.NullDecimal{} }, "totalPrice"},
		{"zero total", func(in *dto.PlaceOrderInput) { in.TotalPrice = decimal.NewNullDecimal(decimal.Zero) }, "totalPrice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := request("10.00", line(p, 1))
			tt.mut(in)

			_, err := f.uc.PlaceOrder(context.Background(), primitive.NewObjectID(), in)
			var ae *apperror.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, apperror.KindValidation, ae.Kind)
			assert.Equal(t, tt.field, ae.Field)
		})
	}

	assert.Equal(t, 5, f.stock(t, p.ID))
	assert.Equal(t, 0, f.orders.Len())
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "shirt", "10.00", 5)
	missing := primitive.NewObjectID().Hex()

	in := request("10.00", line(p, 1), dto.OrderItemInput{ProductID: missing, Quantity: httpx.NewInt(1)})
	_, err := f.uc.PlaceOrder(context.Background(), primitive.NewObjectID(), in)

	require.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Contains(t, err.Error(), missing)
	assert.Equal(t, 5, f.stock(t, p.ID))
	assert.Equal(t, 0, f.orders.Len())
}

func TestPlaceOrderInsufficientStockIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "shirt", "10.00", 5)
	b := f.product(t, "hat", "4.00", 1)
	uid := primitive.NewObjectID()

	_, err := f.uc.PlaceOrder(context.Background(), uid, request("28.00", line(a, 2), line(b, 2)))

	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindStock, ae.Kind)
	assert.Equal(t, "hat", ae.Details["name"])
	assert.Equal(t, 1, ae.Details["available"])
	assert.Equal(t, 2, ae.Details["requested"])

	assert.Equal(t, 5, f.stock(t, a.ID), "earlier line restored")
	assert.Equal(t, 1, f.stock(t, b.ID))
	assert.Equal(t, 0, f.orders.Len())
	assert.Empty(t, f.publisher.types())
}

func TestPlaceOrderRestoresStockWhenPersistFails(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "shirt", "10.00", 5)
	uc := NewOrderUseCase(failingOrders{f.orders}, f.products, f.carts, f.publisher, zap.NewNop())

	_, err := uc.PlaceOrder(context.Background(), primitive.NewObjectID(), request("30.00", line(p, 3)))

	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.Equal(t, 5, f.stock(t, p.ID))
}

func TestPlaceOrderPublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	p := f.product(t, "shirt", "10.00", 5)

	o, err := f.uc.PlaceOrder(context.Background(), primitive.NewObjectID(), request("10.00", line(p, 1)))
	require.NoError(t, err)
	assert.NotNil(t, o)
}

func TestConcurrentPlacementsNeverOversell(t *testing.T) {
	const (
		stock    = 10
		quantity = 3
		buyers   = 20
	)
	f := newFixture(t)
	p := f.product(t, "limited", "5.00", stock)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.PlaceOrder(context.Background(), primitive.NewObjectID(), request("15.00", line(p, quantity)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperror.Is(err, apperror.KindStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock/quantity, succeeded)
	assert.Equal(t, buyers-stock/quantity, rejected)
	assert.Equal(t, stock%quantity, f.stock(t, p.ID))
	assert.Equal(t, stock/quantity, f.orders.Len())
}

func TestOrderSnapshotsSurviveProductChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := primitive.NewObjectID()
	p := f.product(t, "shirt", "10.00", 5)

	o, err := f.uc.PlaceOrder(ctx, uid, request("10.00", line(p, 1)))
	require.NoError(t, err)

	p.Name = "renamed"
	p.Price = decimal.NewFromInt(99)
	require.NoError(t, f.products.Update(ctx, p))
	require.NoError(t, f.products.Delete(ctx, p.ID))

	_, err = f.uc.UpdateStatus(ctx, o.ID, &dto.StatusInput{OrderStatus: "Shipped"})
	require.NoError(t, err)

	got, err := f.uc.GetOrder(ctx, o.ID, auth.Identity{UserID: uid}, false)
	require.NoError(t, err)
	assert.Equal(t, o.OrderItems, got.OrderItems)
	assert.Equal(t, o.TotalPrice.String(), got.TotalPrice.String())
}

func TestGetOrderOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	p := f.product(t, "shirt", "10.00", 5)

	o, err := f.uc.PlaceOrder(ctx, owner, request("10.00", line(p, 1)))
	require.NoError(t, err)

	_, err = f.uc.GetOrder(ctx, o.ID, auth.Identity{UserID: owner}, false)
	assert.NoError(t, err)

	_, err = f.uc.GetOrder(ctx, o.ID, auth.Identity{UserID: primitive.NewObjectID(), Role: "admin"}, true)
	assert.NoError(t, err)

	_, err = f.uc.GetOrder(ctx, o.ID, auth.Identity{UserID: primitive.NewObjectID()}, false)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.uc.GetOrder(ctx, primitive.NewObjectID(), auth.Identity{UserID: primitive.NewObjectID()}, false)
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "missing orders are not found even for strangers")
}

func TestGetMyOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uid := primitive.NewObjectID()
	p := f.product(t, "shirt", "10.00", 5)

	orders, err := f.uc.GetMyOrders(ctx, uid)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)

	first, err := f.uc.PlaceOrder(ctx, uid, request("10.00", line(p, 1)))
	require.NoError(t, err)
	f.uc.now = func() time.Time { return first.CreatedAt.Add(time.Minute) }
	second, err := f.uc.PlaceOrder(ctx, uid, request("10.00", line(p, 1)))
	require.NoError(t, err)
	_, err = f.uc.PlaceOrder(ctx, primitive.NewObjectID(), request("10.00", line(p, 1)))
	require.NoError(t, err)

	orders, err = f.uc.GetMyOrders(ctx, uid)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID, "newest first")
	assert.Equal(t, first.ID, orders[1].ID)

	all, err := f.uc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []string
		wantErr apperror.Kind
	}{
		{"processing to shipped to delivered", []string{"Shipped", "Delivered"}, -1},
		{"processing to on the way to delivered", []string{"on the way", "delivered"}, -1},
		{"cancel before delivery", []string{"On the way", "Cancelled"}, -1},
		{"same status is a no-op", []string{"Processing"}, -1},
		{"delivered is terminal", []string{"Shipped", "Delivered", "Processing"}, apperror.KindValidation},
		{"cancelled is terminal", []string{"Cancelled", "Shipped"}, apperror.KindValidation},
		{"no skipping to delivered", []string{"Delivered"}, apperror.KindValidation},
		{"no going back", []string{"Shipped", "On the way"}, apperror.KindValidation},
		{"unknown status", []string{"Lost"}, apperror.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			p := f.product(t, "shirt", "10.00", 5)
			o, err := f.uc.PlaceOrder(ctx, primitive.NewObjectID(), request("10.00", line(p, 1)))
			require.NoError(t, err)

			var last error
			var updated *model.Order
			for _, status := range tt.path {
				updated, last = f.uc.UpdateStatus(ctx, o.ID, &dto.StatusInput{OrderStatus: status})
				if last != nil {
					break
				}
			}

			if tt.wantErr < 0 {
				require.NoError(t, last)
				want, _ := model.ParseOrderStatus(tt.path[len(tt.path)-1])
				assert.Equal(t, want, updated.OrderStatus)
				if want == model.StatusDelivered {
					assert.NotNil(t, updated.DeliveredAt)
				}
				return
			}
			var ae *apperror.Error
			require.ErrorAs(t, last, &ae)
			assert.Equal(t, tt.wantErr, ae.Kind)
			assert.Equal(t, "orderStatus", ae.Field)
		})
	}
}

func TestUpdateStatusRejectsStaleTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "shirt", "10.00", 5)
	o, err := f.uc.PlaceOrder(ctx, primitive.NewObjectID(), request("10.00", line(p, 1)))
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, o.ID, orderStatusUpdate(model.StatusProcessing, model.StatusCancelled))
	require.NoError(t, err)

	stale := &staleOrders{OrderRepository: f.orders, snapshot: o}
	uc := NewOrderUseCase(stale, f.products, f.carts, f.publisher, zap.NewNop())
	_, err = uc.UpdateStatus(ctx, o.ID, &dto.StatusInput{OrderStatus: "Shipped"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestUpdatePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "shirt", "10.00", 5)
	o, err := f.uc.PlaceOrder(ctx, primitive.NewObjectID(), request("10.00", line(p, 1)))
	require.NoError(t, err)

	paid, unpaid := true, false
	updated, err := f.uc.UpdatePayment(ctx, o.ID, &dto.PaymentInput{IsPaid: &paid})
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	assert.NotNil(t, updated.PaidAt)
	assert.Equal(t, model.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, o.OrderItems, updated.OrderItems)

	updated, err = f.uc.UpdatePayment(ctx, o.ID, &dto.PaymentInput{IsPaid: &unpaid})
	require.NoError(t, err)
	assert.False(t, updated.IsPaid)
	assert.Nil(t, updated.PaidAt)
	assert.Equal(t, model.PaymentPending, updated.PaymentStatus)

	_, err = f.uc.UpdatePayment(ctx, o.ID, &dto.PaymentInput{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.uc.UpdatePayment(ctx, primitive.NewObjectID(), &dto.PaymentInput{IsPaid: &paid})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderPaymentUpdated, events.OrderPaymentUpdated}, f.publisher.types())
}

func TestDeleteOrderLeavesStockAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "shirt", "10.00", 5)
	o, err := f.uc.PlaceOrder(ctx, primitive.NewObjectID(), request("20.00", line(p, 2)))
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteOrder(ctx, o.ID))
	assert.Equal(t, 0, f.orders.Len())
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.True(t, apperror.Is(f.uc.DeleteOrder(ctx, o.ID), apperror.KindNotFound))
	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderDeleted}, f.publisher.types())
}
