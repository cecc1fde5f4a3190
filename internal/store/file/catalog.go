package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"tienda/internal/domain/catalog"
)

// CatalogStore keeps the whole product list in one JSON file and rewrites it
// on every mutation. It is the fallback backend for running without a
// database; all access goes through a single RWMutex.
type CatalogStore struct {
	mu       sync.RWMutex
	path     string
	products []catalog.Product
}

func NewCatalogStore(dataDir string) (*CatalogStore, error) {
	s := &CatalogStore{path: filepath.Join(dataDir, "productos.json")}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CatalogStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.products = nil
			return nil
		}
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &s.products); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	return nil
}

// flush rewrites the whole file. Callers must hold the write lock.
func (s *CatalogStore) flush() error {
	data, err := json.MarshalIndent(s.products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *CatalogStore) indexOf(id int64) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CatalogStore) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		p := s.products[i]
		return &p, nil
	}
	return nil, catalog.ErrNotFound
}

func (s *CatalogStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0, nil
}

func (s *CatalogStore) DecrementStock(_ context.Context, id int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("decrement stock: n must be > 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return catalog.ErrNotFound
	}
	if s.products[i].Stock < n {
		return catalog.ErrInsufficientStock
	}
	s.products[i].Stock -= n
	s.products[i].UpdatedAt = time.Now().UTC()
	return s.flush()
}

func (s *CatalogStore) List(_ context.Context, f catalog.Filter) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.AvailableOnly && (!p.Status || p.Stock <= 0) {
			continue
		}
		out = append(out, p)
	}

	switch f.SortByPrice {
	case "asc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceCents < out[j].PriceCents })
	case "desc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceCents > out[j].PriceCents })
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *CatalogStore) Create(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].Code == p.Code {
			return catalog.ErrDuplicateCode
		}
	}

	var next int64 = 1
	if n := len(s.products); n > 0 {
		next = s.products[n-1].ID + 1
	}
	now := time.Now().UTC()
	p.ID = next
	p.CreatedAt = now
	p.UpdatedAt = now

	s.products = append(s.products, *p)
	if err := s.flush(); err != nil {
		s.products = s.products[:len(s.products)-1]
		return err
	}
	return nil
}

func (s *CatalogStore) Update(_ context.Context, id int64, fields catalog.UpdateFields) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, catalog.ErrNotFound
	}

	p := &s.products[i]
	if fields.Title != nil {
		p.Title = *fields.Title
	}
	if fields.Code != nil {
		p.Code = *fields.Code
	}
	if fields.PriceCents != nil {
		p.PriceCents = *fields.PriceCents
	}
	if fields.Stock != nil {
		p.Stock = *fields.Stock
	}
	if fields.Category != nil {
		p.Category = *fields.Category
	}
	if fields.Thumbnails != nil {
		p.Thumbnails = *fields.Thumbnails
	}
	if fields.Status != nil {
		p.Status = *fields.Status
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.flush(); err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

func (s *CatalogStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return catalog.ErrNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return s.flush()
}
