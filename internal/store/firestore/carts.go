package firestore

import (
	"context"
	"fmt"

	"tienda/internal/domain/cart"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultCollection = "carts"

// CartRepository is the durable document-store backend: one document per
// cart, lines stored as a nested array of {product, quantity} maps.
type CartRepository struct {
	client *firestore.Client
	col    string
}

func NewCartRepository(client *firestore.Client) *CartRepository {
	return &CartRepository{client: client, col: defaultCollection}
}

func NewCartRepositoryWithCollection(client *firestore.Client, col string) *CartRepository {
	if col == "" {
		col = defaultCollection
	}
	return &CartRepository{client: client, col: col}
}

func (r *CartRepository) Get(ctx context.Context, id string) (*cart.Cart, error) {
	snap, err := r.client.Collection(r.col).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, cart.ErrNotFound
		}
		if status.Code(err) == codes.DeadlineExceeded || status.Code(err) == codes.Unavailable {
			return nil, fmt.Errorf("%w: %v", cart.ErrUnavailable, err)
		}
		return nil, fmt.Errorf("get cart %s: %w", id, err)
	}

	var c cart.Cart
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	// The document id wins over whatever the payload carries.
	c.ID = snap.Ref.ID
	return &c, nil
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	if c.ID == "" {
		return fmt.Errorf("save cart: empty id")
	}

	// Whole-document write with merge keeps fields other writers may have
	// attached to the doc.
	_, err := r.client.Collection(r.col).Doc(c.ID).Set(ctx, map[string]any{
		"id":         c.ID,
		"products":   linesToDoc(c.Lines),
		"totalCents": c.TotalCents,
	}, firestore.MergeAll)
	if err != nil {
		if status.Code(err) == codes.DeadlineExceeded || status.Code(err) == codes.Unavailable {
			return fmt.Errorf("%w: %v", cart.ErrUnavailable, err)
		}
		return fmt.Errorf("save cart %s: %w", c.ID, err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	// Firestore deletes are idempotent; a missing doc is not an error.
	_, err := r.client.Collection(r.col).Doc(id).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.DeadlineExceeded || status.Code(err) == codes.Unavailable {
			return fmt.Errorf("%w: %v", cart.ErrUnavailable, err)
		}
		return fmt.Errorf("delete cart %s: %w", id, err)
	}
	return nil
}

func (r *CartRepository) NextID() string {
	return uuid.NewString()
}

func linesToDoc(lines []cart.Line) []map[string]any {
	out := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		out = append(out, map[string]any{
			"product":  l.ProductID,
			"quantity": l.Quantity,
		})
	}
	return out
}
