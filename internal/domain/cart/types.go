package cart

// Line is one product-reference/quantity pair inside a cart. ProductID is a
// weak reference; the product record itself lives in the catalog.
type Line struct {
	ProductID int64 `json:"product" firestore:"product"`
	Quantity  int   `json:"quantity" firestore:"quantity"`
}

// Cart holds at most one line per distinct product. TotalCents is derived
// and only meaningful right after RecomputeTotal.
type Cart struct {
	ID         string `json:"id" firestore:"id"`
	Lines      []Line `json:"products" firestore:"products"`
	TotalCents int64  `json:"total_cents" firestore:"totalCents"`
}

// View is the populated shape pushed to clients: each line resolved against
// the catalog where possible.
type View struct {
	ID         string     `json:"id"`
	Items      []ViewLine `json:"products"`
	TotalCents int64      `json:"total_cents"`
}

type ViewLine struct {
	ProductID  int64  `json:"product"`
	Title      string `json:"title,omitempty"`
	PriceCents int64  `json:"price_cents,omitempty"`
	Quantity   int    `json:"quantity"`
	Resolvable bool   `json:"resolvable"`
}
