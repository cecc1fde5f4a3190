package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tienda/internal/domain/cart"
	"tienda/internal/domain/catalog"
	"tienda/internal/realtime"
	"tienda/internal/store"

	"go.uber.org/zap"
)

// Coordinator mediates between the catalog and the cart repository. It is
// the only component that mutates cart contents: every mutation re-reads
// stock in the same call, never from a cached value.
//
// Calls are serialized per cart id, so two concurrent mutations on the same
// cart cannot interleave between the stock check and the persist.
type Coordinator struct {
	catalog catalog.Store
	carts   cart.Repository
	events  realtime.Publisher
	logger  *zap.SugaredLogger
	locks   *keyedMutex
	timeout time.Duration
}

func NewCoordinator(st store.Storage, events realtime.Publisher, logger *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		catalog: st.Catalog,
		carts:   st.Carts,
		events:  events,
		logger:  logger,
		locks:   newKeyedMutex(),
		timeout: store.QueryTimeoutDuration,
	}
}

// --- cart mutations ---

// AddToCart adds qty units of a product to the cart, creating the cart
// lazily when the id is unknown or empty. An existing line is merged, never
// duplicated. On any failure the cart is left untouched.
func (co *Coordinator) AddToCart(ctx context.Context, cartID string, productID int64, qty int) (*cart.View, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if productID <= 0 {
		return nil, ErrInvalidReference
	}
	if cartID == "" {
		cartID = co.carts.NextID()
	}

	co.locks.lock(cartID)
	defer co.locks.unlock(cartID)

	p, err := co.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock <= 0 {
		return nil, ErrOutOfStock
	}

	c, err := co.loadCart(ctx, cartID, true)
	if err != nil {
		return nil, err
	}

	if c.Quantity(productID)+qty > p.Stock {
		return nil, ErrStockExceeded
	}
	c.AddLine(productID, qty)

	return co.commit(ctx, c)
}

// RemoveFromCart deletes the product's line. A missing line is a no-op; the
// unchanged cart is persisted and broadcast anyway.
func (co *Coordinator) RemoveFromCart(ctx context.Context, cartID string, productID int64) (*cart.View, error) {
	if productID <= 0 {
		return nil, ErrInvalidReference
	}

	co.locks.lock(cartID)
	defer co.locks.unlock(cartID)

	c, err := co.loadCart(ctx, cartID, false)
	if err != nil {
		return nil, err
	}
	c.RemoveLine(productID)

	return co.commit(ctx, c)
}

// UpdateQuantity sets the line's quantity directly. Callers wanting a zero
// quantity should remove the line instead.
func (co *Coordinator) UpdateQuantity(ctx context.Context, cartID string, productID int64, qty int) (*cart.View, error) {
	if productID <= 0 {
		return nil, ErrInvalidReference
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	co.locks.lock(cartID)
	defer co.locks.unlock(cartID)

	p, err := co.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > p.Stock {
		return nil, ErrInvalidQuantity
	}

	c, err := co.loadCart(ctx, cartID, false)
	if err != nil {
		return nil, err
	}
	c.SetQuantity(productID, qty)

	return co.commit(ctx, c)
}

// ReplaceLines swaps the whole line set, validating every entry against
// current stock. Duplicate product references merge by summing quantities.
func (co *Coordinator) ReplaceLines(ctx context.Context, cartID string, lines []cart.Line) (*cart.View, error) {
	co.locks.lock(cartID)
	defer co.locks.unlock(cartID)

	c, err := co.loadCart(ctx, cartID, false)
	if err != nil {
		return nil, err
	}

	next := cart.New(c.ID)
	for _, l := range lines {
		if l.ProductID <= 0 {
			return nil, ErrInvalidReference
		}
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		next.AddLine(l.ProductID, l.Quantity)
	}
	for _, l := range next.Lines {
		p, err := co.getProduct(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if l.Quantity > p.Stock {
			return nil, ErrStockExceeded
		}
	}

	return co.commit(ctx, next)
}

// ClearCart empties the cart and resets the total to zero.
func (co *Coordinator) ClearCart(ctx context.Context, cartID string) (*cart.View, error) {
	co.locks.lock(cartID)
	defer co.locks.unlock(cartID)

	c, err := co.loadCart(ctx, cartID, false)
	if err != nil {
		return nil, err
	}
	c.Clear()

	return co.commit(ctx, c)
}

// DeleteCart removes the cart record entirely.
func (co *Coordinator) DeleteCart(ctx context.Context, cartID string) error {
	co.locks.lock(cartID)
	defer co.locks.unlock(cartID)

	if _, err := co.loadCart(ctx, cartID, false); err != nil {
		return err
	}

	tctx, cancel := co.withTimeout(ctx)
	defer cancel()
	if err := co.carts.Delete(tctx, cartID); err != nil {
		return co.translateCartErr(err)
	}
	return nil
}

// CreateCart allocates an id and persists an empty cart.
func (co *Coordinator) CreateCart(ctx context.Context) (*cart.View, error) {
	c := cart.New(co.carts.NextID())

	tctx, cancel := co.withTimeout(ctx)
	defer cancel()
	if err := co.carts.Save(tctx, c); err != nil {
		return nil, co.translateCartErr(err)
	}
	return &cart.View{ID: c.ID, Items: []cart.ViewLine{}}, nil
}

// GetCart returns the populated view: every line resolved against the
// catalog, dangling references flagged instead of dropped.
func (co *Coordinator) GetCart(ctx context.Context, cartID string) (*cart.View, error) {
	c, err := co.loadCart(ctx, cartID, false)
	if err != nil {
		return nil, err
	}

	resolved, err := co.resolveLines(ctx, c)
	if err != nil {
		return nil, err
	}
	co.recompute(c, resolved)
	return buildView(c, resolved), nil
}

// Checkout converts the cart: stock is decremented for every resolvable
// line, then the cart is emptied. Decrementing is the only stock-mutation
// path; unresolvable lines are logged and skipped.
func (co *Coordinator) Checkout(ctx context.Context, cartID string) (*cart.View, error) {
	co.locks.lock(cartID)
	defer co.locks.unlock(cartID)

	c, err := co.loadCart(ctx, cartID, false)
	if err != nil {
		return nil, err
	}

	resolved, err := co.resolveLines(ctx, c)
	if err != nil {
		return nil, err
	}
	for _, l := range c.Lines {
		if p, ok := resolved[l.ProductID]; ok && l.Quantity > p.Stock {
			return nil, ErrStockExceeded
		}
	}

	for _, l := range c.Lines {
		if _, ok := resolved[l.ProductID]; !ok {
			co.logger.Warnw("skipping unresolvable line at checkout", "cart_id", c.ID, "product_id", l.ProductID)
			continue
		}
		tctx, cancel := co.withTimeout(ctx)
		err := co.catalog.DecrementStock(tctx, l.ProductID, l.Quantity)
		cancel()
		if err != nil {
			switch {
			case errors.Is(err, catalog.ErrInsufficientStock):
				return nil, ErrStockExceeded
			case errors.Is(err, catalog.ErrNotFound):
				co.logger.Warnw("product vanished during checkout", "cart_id", c.ID, "product_id", l.ProductID)
				continue
			default:
				return nil, co.translateCatalogErr(err)
			}
		}
	}

	c.Clear()
	return co.commit(ctx, c)
}

// --- catalog operations ---

func (co *Coordinator) ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	tctx, cancel := co.withTimeout(ctx)
	defer cancel()

	out, err := co.catalog.List(tctx, f)
	if err != nil {
		return nil, co.translateCatalogErr(err)
	}
	return out, nil
}

func (co *Coordinator) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidReference
	}
	return co.getProduct(ctx, id)
}

func (co *Coordinator) CreateProduct(ctx context.Context, p *catalog.Product) error {
	tctx, cancel := co.withTimeout(ctx)
	defer cancel()

	if err := co.catalog.Create(tctx, p); err != nil {
		return co.translateCatalogErr(err)
	}
	co.broadcastProducts(ctx)
	return nil
}

func (co *Coordinator) UpdateProduct(ctx context.Context, id int64, fields catalog.UpdateFields) (*catalog.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidReference
	}

	tctx, cancel := co.withTimeout(ctx)
	defer cancel()

	p, err := co.catalog.Update(tctx, id, fields)
	if err != nil {
		return nil, co.translateCatalogErr(err)
	}
	co.broadcastProducts(ctx)
	return p, nil
}

// DeleteProduct removes the product from the catalog. Cart lines referencing
// it are left in place: they resolve to nothing from now on and contribute 0
// to totals until explicitly removed.
func (co *Coordinator) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidReference
	}

	tctx, cancel := co.withTimeout(ctx)
	defer cancel()

	if err := co.catalog.Delete(tctx, id); err != nil {
		return co.translateCatalogErr(err)
	}
	co.broadcastProducts(ctx)
	return nil
}

// --- internals ---

func (co *Coordinator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, co.timeout)
}

func (co *Coordinator) getProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	tctx, cancel := co.withTimeout(ctx)
	defer cancel()

	p, err := co.catalog.GetByID(tctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, co.translateCatalogErr(err)
	}
	return p, nil
}

// loadCart fetches the cart. With lazy set, an unknown id yields a fresh
// empty cart instead of an error.
func (co *Coordinator) loadCart(ctx context.Context, cartID string, lazy bool) (*cart.Cart, error) {
	if cartID == "" {
		return nil, ErrCartNotFound
	}

	tctx, cancel := co.withTimeout(ctx)
	defer cancel()

	c, err := co.carts.Get(tctx, cartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			if lazy {
				return cart.New(cartID), nil
			}
			return nil, ErrCartNotFound
		}
		return nil, co.translateCartErr(err)
	}
	return c, nil
}

// resolveLines reads the referenced products once. A deleted product is
// simply absent from the result; storage failures abort.
func (co *Coordinator) resolveLines(ctx context.Context, c *cart.Cart) (map[int64]*catalog.Product, error) {
	out := make(map[int64]*catalog.Product, len(c.Lines))
	for _, l := range c.Lines {
		tctx, cancel := co.withTimeout(ctx)
		p, err := co.catalog.GetByID(tctx, l.ProductID)
		cancel()
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			return nil, co.translateCatalogErr(err)
		}
		out[l.ProductID] = p
	}
	return out, nil
}

// recompute derives the total from the resolved products, logging every
// dangling reference. The lines themselves stay in the cart.
func (co *Coordinator) recompute(c *cart.Cart, resolved map[int64]*catalog.Product) {
	unresolved := c.RecomputeTotal(func(id int64) (int64, bool) {
		p, ok := resolved[id]
		if !ok {
			return 0, false
		}
		return p.PriceCents, true
	})
	for _, id := range unresolved {
		co.logger.Warnw("cart line references deleted product, contributes 0",
			"cart_id", c.ID, "product_id", id)
	}
}

// commit recomputes the total, persists the cart and fans the committed
// state out. Broadcast problems never surface to the caller: the mutation is
// already final once Save returns.
func (co *Coordinator) commit(ctx context.Context, c *cart.Cart) (*cart.View, error) {
	resolved, err := co.resolveLines(ctx, c)
	if err != nil {
		return nil, err
	}
	co.recompute(c, resolved)

	tctx, cancel := co.withTimeout(ctx)
	defer cancel()
	if err := co.carts.Save(tctx, c); err != nil {
		return nil, co.translateCartErr(err)
	}

	view := buildView(c, resolved)
	co.events.Publish(realtime.Event{Kind: realtime.EventCart, Cart: view})
	co.broadcastProducts(ctx)
	return view, nil
}

func (co *Coordinator) broadcastProducts(ctx context.Context) {
	tctx, cancel := co.withTimeout(ctx)
	defer cancel()

	products, err := co.catalog.List(tctx, catalog.Filter{})
	if err != nil {
		co.logger.Errorw("listing products for broadcast failed", "error", err)
		return
	}
	co.events.Publish(realtime.Event{Kind: realtime.EventProducts, Products: products})
}

func (co *Coordinator) translateCatalogErr(err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, catalog.ErrInsufficientStock):
		return ErrStockExceeded
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	default:
		return err
	}
}

func (co *Coordinator) translateCartErr(err error) error {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		return ErrCartNotFound
	case errors.Is(err, cart.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	default:
		return err
	}
}

func buildView(c *cart.Cart, resolved map[int64]*catalog.Product) *cart.View {
	v := &cart.View{ID: c.ID, TotalCents: c.TotalCents, Items: make([]cart.ViewLine, 0, len(c.Lines))}
	for _, l := range c.Lines {
		vl := cart.ViewLine{ProductID: l.ProductID, Quantity: l.Quantity}
		if p, ok := resolved[l.ProductID]; ok {
			vl.Title = p.Title
			vl.PriceCents = p.PriceCents
			vl.Resolvable = true
		}
		v.Items = append(v.Items, vl)
	}
	return v
}
