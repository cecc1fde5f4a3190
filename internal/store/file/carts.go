package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tienda/internal/domain/cart"

	"github.com/google/uuid"
)

// cartRecord is the on-disk shape: the derived total is never persisted, it
// is always recomputed after load.
type cartRecord struct {
	ID       string      `json:"id"`
	Products []cart.Line `json:"products"`
}

// CartRepository is the flat-file backend: a single JSON document holding an
// array of cart records, rewritten whole on every save.
type CartRepository struct {
	mu    sync.RWMutex
	path  string
	carts []cartRecord
}

func NewCartRepository(dataDir string) (*CartRepository, error) {
	r := &CartRepository{path: filepath.Join(dataDir, "carritos.json")}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CartRepository) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.carts = nil
			return nil
		}
		return fmt.Errorf("read %s: %w", r.path, err)
	}
	if err := json.Unmarshal(data, &r.carts); err != nil {
		return fmt.Errorf("parse %s: %w", r.path, err)
	}
	return nil
}

// flush rewrites the whole file. Callers must hold the write lock.
func (r *CartRepository) flush() error {
	data, err := json.MarshalIndent(r.carts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode carts: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

func (r *CartRepository) indexOf(id string) int {
	for i := range r.carts {
		if r.carts[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *CartRepository) Get(_ context.Context, id string) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, cart.ErrNotFound
	}

	c := &cart.Cart{ID: r.carts[i].ID}
	if len(r.carts[i].Products) > 0 {
		c.Lines = make([]cart.Line, len(r.carts[i].Products))
		copy(c.Lines, r.carts[i].Products)
	}
	return c, nil
}

func (r *CartRepository) Save(_ context.Context, c *cart.Cart) error {
	if c.ID == "" {
		return fmt.Errorf("save cart: empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := cartRecord{ID: c.ID}
	if len(c.Lines) > 0 {
		rec.Products = make([]cart.Line, len(c.Lines))
		copy(rec.Products, c.Lines)
	}

	if i := r.indexOf(c.ID); i >= 0 {
		prev := r.carts[i]
		r.carts[i] = rec
		if err := r.flush(); err != nil {
			r.carts[i] = prev
			return err
		}
		return nil
	}

	r.carts = append(r.carts, rec)
	if err := r.flush(); err != nil {
		r.carts = r.carts[:len(r.carts)-1]
		return err
	}
	return nil
}

func (r *CartRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		// Deleting an unknown cart is idempotent, same as the document
		// backend.
		return nil
	}
	r.carts = append(r.carts[:i], r.carts[i+1:]...)
	return r.flush()
}

func (r *CartRepository) NextID() string {
	return uuid.NewString()
}
