package inventory

import "errors"

// Coordinator-level error taxonomy. Storage errors are translated into these
// before they leave the package; transports map them onto status codes and
// stable messages.
var (
	ErrProductNotFound       = errors.New("product not found")
	ErrOutOfStock            = errors.New("product out of stock")
	ErrStockExceeded         = errors.New("requested quantity exceeds available stock")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrCartNotFound          = errors.New("cart not found")
	ErrRepositoryUnavailable = errors.New("storage temporarily unavailable")
	ErrInvalidReference      = errors.New("malformed product reference")
)
