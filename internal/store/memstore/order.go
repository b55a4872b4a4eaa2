package memstore

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/model"
	"storefront-backend/internal/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]model.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[primitive.ObjectID]model.Order)}
}

func (r *OrderRepository) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	r.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *OrderRepository) FindByUser(_ context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) FindAll(_ context.Context) ([]model.Order, error) {
	return r.list(func(model.Order) bool { return true }), nil
}

func (r *OrderRepository) list(keep func(model.Order) bool) []model.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, u order.StatusUpdate) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.OrderStatus != u.From {
		return nil, order.ErrStatusChanged
	}
	o.OrderStatus = u.To
	if u.DeliveredAt != nil {
		o.DeliveredAt = u.DeliveredAt
	}
	o.UpdatedAt = u.UpdatedAt
	r.orders[id] = o
	out := cloneOrder(o)
	return &out, nil
}

func (r *OrderRepository) UpdatePayment(_ context.Context, id primitive.ObjectID, u order.PaymentUpdate) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o.IsPaid = u.IsPaid
	o.PaidAt = u.PaidAt
	o.PaymentStatus = u.PaymentStatus
	o.UpdatedAt = u.UpdatedAt
	r.orders[id] = o
	out := cloneOrder(o)
	return &out, nil
}

func (r *OrderRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

// Len reports how many orders are stored.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func cloneOrder(o model.Order) model.Order {
	o.OrderItems = append([]model.OrderItem(nil), o.OrderItems...)
	return o
}
