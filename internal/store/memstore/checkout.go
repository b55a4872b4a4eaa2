package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/model"
)

type CheckoutRepository struct {
	mu        sync.RWMutex
	checkouts map[primitive.ObjectID]model.Checkout
}

func NewCheckoutRepository() *CheckoutRepository {
	return &CheckoutRepository{checkouts: make(map[primitive.ObjectID]model.Checkout)}
}

func (r *CheckoutRepository) Create(_ context.Context, c *model.Checkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	r.checkouts[c.ID] = cloneCheckout(*c)
	return nil
}

func (r *CheckoutRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Checkout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checkouts[id]
	if !ok {
		return nil, nil
	}
	out := cloneCheckout(c)
	return &out, nil
}

func (r *CheckoutRepository) Update(_ context.Context, c *model.Checkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts[c.ID] = cloneCheckout(*c)
	return nil
}

func cloneCheckout(c model.Checkout) model.Checkout {
	c.CheckoutItems = append([]model.CartItem(nil), c.CheckoutItems...)
	return c
}
