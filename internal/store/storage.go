package store

import (
	"time"

	"tienda/internal/domain/cart"
	"tienda/internal/domain/catalog"
)

// QueryTimeoutDuration bounds every repository and catalog call made by the
// coordinator. A blown deadline surfaces as a retryable unavailable error,
// never as a silent no-op.
var QueryTimeoutDuration = time.Second * 5

// Storage bundles the configured backends. Which implementation sits behind
// each field is decided once at startup from configuration; nothing
// downstream inspects the concrete type.
type Storage struct {
	Catalog catalog.Store
	Carts   cart.Repository
}
