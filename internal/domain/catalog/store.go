package catalog

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateCode     = errors.New("product code already exists")
)

// Store is the catalog contract. Stock is mutated through DecrementStock
// only; every other write goes through the admin CRUD operations.
type Store interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	Exists(ctx context.Context, id int64) (bool, error)

	// DecrementStock subtracts n units atomically. It returns
	// ErrInsufficientStock when n exceeds the current stock and
	// ErrNotFound when the id is unknown.
	DecrementStock(ctx context.Context, id int64, n int) error

	List(ctx context.Context, f Filter) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id int64, fields UpdateFields) (*Product, error)
	Delete(ctx context.Context, id int64) error
}
