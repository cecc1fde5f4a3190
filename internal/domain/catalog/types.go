package catalog

import "time"

type Product struct {
	ID         int64     `json:"id" firestore:"id"`
	Title      string    `json:"title" firestore:"title"`
	Code       string    `json:"code" firestore:"code"`
	PriceCents int64     `json:"price_cents" firestore:"priceCents"`
	Stock      int       `json:"stock" firestore:"stock"`
	Category   string    `json:"category" firestore:"category"`
	Thumbnails []string  `json:"thumbnails,omitempty" firestore:"thumbnails"`
	Status     bool      `json:"status" firestore:"status"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}

// UpdateFields carries a partial update; nil fields are left untouched.
type UpdateFields struct {
	Title      *string   `json:"title,omitempty"`
	Code       *string   `json:"code,omitempty"`
	PriceCents *int64    `json:"price_cents,omitempty"`
	Stock      *int      `json:"stock,omitempty"`
	Category   *string   `json:"category,omitempty"`
	Thumbnails *[]string `json:"thumbnails,omitempty"`
	Status     *bool     `json:"status,omitempty"`
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Category      string
	AvailableOnly bool // status = true AND stock > 0
	Limit         int
	Offset        int
	SortByPrice   string // "asc", "desc" or ""
}
