package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/model"
)

type CartRepository struct {
	mu    sync.RWMutex
	carts map[primitive.ObjectID]model.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[primitive.ObjectID]model.Cart)}
}

func (r *CartRepository) FindByOwner(_ context.Context, owner auth.CartOwner) (*model.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.carts {
		if ownedBy(c, owner) {
			out := cloneCart(c)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *CartRepository) Save(_ context.Context, c *model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	r.carts[c.ID] = cloneCart(*c)
	return nil
}

func (r *CartRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, id)
	return nil
}

func (r *CartRepository) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.carts {
		if c.UserID != nil && *c.UserID == userID {
			delete(r.carts, id)
		}
	}
	return nil
}

func (r *CartRepository) SaveMerged(_ context.Context, userCart *model.Cart, guestCartID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if userCart.ID.IsZero() {
		userCart.ID = primitive.NewObjectID()
	}
	r.carts[userCart.ID] = cloneCart(*userCart)
	delete(r.carts, guestCartID)
	return nil
}

// Len reports how many carts are stored.
func (r *CartRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}

func ownedBy(c model.Cart, owner auth.CartOwner) bool {
	switch {
	case owner.IsUser():
		return c.UserID != nil && *c.UserID == owner.UserID
	case owner.IsGuest():
		return c.UserID == nil && c.GuestID == owner.GuestID
	default:
		return false
	}
}

func cloneCart(c model.Cart) model.Cart {
	c.Products = append([]model.CartItem(nil), c.Products...)
	if c.UserID != nil {
		uid := *c.UserID
		c.UserID = &uid
	}
	return c
}
