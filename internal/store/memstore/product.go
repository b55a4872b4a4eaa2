// Package memstore holds mutex-guarded in-memory repositories. They back the
// memory store driver and stand in for MongoDB in tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/model"
	"storefront-backend/internal/product"
	"storefront-backend/internal/product/dto"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]model.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[primitive.ObjectID]model.Product)}
}

func (r *ProductRepository) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *ProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	out := cloneProduct(p)
	return &out, nil
}

func (r *ProductRepository) FindAll(_ context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if f.PublishedOnly && !(p.IsActive && p.IsPublished) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.SearchQuery != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.SearchQuery)) {
			continue
		}
		matched = append(matched, cloneProduct(p))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		switch f.SortBy {
		case dto.SortPriceAsc:
			return matched[i].Price.LessThan(matched[j].Price)
		case dto.SortPriceDesc:
			return matched[i].Price.GreaterThan(matched[j].Price)
		default:
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
	})

	total := len(matched)
	if f.PageSize > 0 {
		start := min(f.Skip(), total)
		end := min(start+f.PageSize, total)
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *ProductRepository) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return nil
	}
	r.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) IsSKUUnique(_ context.Context, sku string, excludeID primitive.ObjectID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, p := range r.products {
		if p.SKU == sku && id != excludeID {
			return false, nil
		}
	}
	return true, nil
}

func (r *ProductRepository) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return product.ErrInsufficientStock
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now()
	r.products[id] = p
	return nil
}

func (r *ProductRepository) IncrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil
	}
	p.Stock += qty
	p.UpdatedAt = time.Now()
	r.products[id] = p
	return nil
}

func cloneProduct(p model.Product) model.Product {
	p.Sizes = append([]string(nil), p.Sizes...)
	p.Colors = append([]model.Color(nil), p.Colors...)
	p.Images = append([]model.Image(nil), p.Images...)
	return p
}
