package cart

// PriceResolver maps a product reference to its current price. ok=false
// means the reference no longer resolves (the product was deleted).
type PriceResolver func(productID int64) (priceCents int64, ok bool)

func New(id string) *Cart {
	return &Cart{ID: id}
}

// AddLine merges qty into an existing line for the product, or appends a new
// one. qty <= 0 is ignored; stock checks belong to the coordinator.
func (c *Cart) AddLine(productID int64, qty int) {
	if qty <= 0 {
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += qty
			return
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: qty})
}

// RemoveLine deletes the line for the product. Removing an absent line is a
// no-op, not an error.
func (c *Cart) RemoveLine(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the line to qty exactly. qty <= 0 removes the line: a
// quantity never drops to zero while the line stays around.
func (c *Cart) SetQuantity(productID int64, qty int) {
	if qty <= 0 {
		c.RemoveLine(productID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = qty
			return
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: qty})
}

// Quantity reports the current quantity for the product, 0 if absent.
func (c *Cart) Quantity(productID int64) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return c.Lines[i].Quantity
		}
	}
	return 0
}

func (c *Cart) Clear() {
	c.Lines = nil
	c.TotalCents = 0
}

// RecomputeTotal derives TotalCents from scratch. Lines whose reference no
// longer resolves contribute 0 but are NOT dropped; their ids are returned
// so the caller can log them. Recomputing twice yields the same total.
func (c *Cart) RecomputeTotal(resolve PriceResolver) (unresolved []int64) {
	var total int64
	for _, l := range c.Lines {
		price, ok := resolve(l.ProductID)
		if !ok {
			unresolved = append(unresolved, l.ProductID)
			continue
		}
		total += price * int64(l.Quantity)
	}
	c.TotalCents = total
	return unresolved
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (c *Cart) Clone() *Cart {
	cp := &Cart{ID: c.ID, TotalCents: c.TotalCents}
	if len(c.Lines) > 0 {
		cp.Lines = make([]Line, len(c.Lines))
		copy(cp.Lines, c.Lines)
	}
	return cp
}
