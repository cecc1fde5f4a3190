package cart

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("cart not found")
	ErrUnavailable = errors.New("cart storage unavailable")
)

// Repository persists carts by identifier. Implementations must be
// interchangeable: the coordinator never inspects which backend it talks to.
type Repository interface {
	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error

	// NextID returns a fresh collision-free identifier.
	NextID() string
}
