package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tienda/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the slice of pgxpool.Pool this store needs. Satisfied by
// *pgxpool.Pool and by pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CatalogStore is the durable catalog backend over Postgres.
type CatalogStore struct {
	db Querier
}

func NewCatalogStore(q Querier) *CatalogStore {
	return &CatalogStore{db: q}
}

const productColumns = `id, title, code, price_cents, stock, category, thumbnails, status, created_at, updated_at`

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Code,
		&p.PriceCents,
		&p.Stock,
		&p.Category,
		&p.Thumbnails,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

func (s *CatalogStore) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	row := s.db.QueryRow(ctx, `
SELECT `+productColumns+`
FROM products
WHERE id = $1
`, id)
	return scanProduct(row)
}

func (s *CatalogStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)
`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}
	return exists, nil
}

// DecrementStock subtracts n units in a single guarded UPDATE so two
// concurrent callers can never drive stock below zero.
func (s *CatalogStore) DecrementStock(ctx context.Context, id int64, n int) error {
	if n <= 0 {
		return fmt.Errorf("decrement stock: n must be > 0")
	}

	tag, err := s.db.Exec(ctx, `
UPDATE products
SET stock = stock - $2,
    updated_at = now()
WHERE id = $1
  AND stock >= $2
`, id, n)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is missing or the guard rejected the write.
		exists, err := s.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return catalog.ErrNotFound
		}
		return catalog.ErrInsufficientStock
	}
	return nil
}

func (s *CatalogStore) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := 1

	if f.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", arg))
		args = append(args, f.Category)
		arg++
	}
	if f.AvailableOnly {
		where = append(where, "status = true AND stock > 0")
	}

	order := "id ASC"
	switch f.SortByPrice {
	case "asc":
		order = "price_cents ASC"
	case "desc":
		order = "price_cents DESC"
	}

	q := fmt.Sprintf(`
SELECT `+productColumns+`
FROM products
WHERE %s
ORDER BY %s
`, strings.Join(where, " AND "), order)

	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d", arg)
		args = append(args, f.Limit)
		arg++
	}
	if f.Offset > 0 {
		q += fmt.Sprintf(" OFFSET $%d", arg)
		args = append(args, f.Offset)
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Code,
			&p.PriceCents,
			&p.Stock,
			&p.Category,
			&p.Thumbnails,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products rows: %w", err)
	}
	return out, nil
}

func (s *CatalogStore) Create(ctx context.Context, p *catalog.Product) error {
	err := s.db.QueryRow(ctx, `
INSERT INTO products (title, code, price_cents, stock, category, thumbnails, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at
`, p.Title, p.Code, p.PriceCents, p.Stock, p.Category, p.Thumbnails, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return catalog.ErrDuplicateCode
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *CatalogStore) Update(ctx context.Context, id int64, fields catalog.UpdateFields) (*catalog.Product, error) {
	set := []string{"updated_at = now()"}
	args := []any{id}
	arg := 2

	add := func(col string, v any) {
		set = append(set, fmt.Sprintf("%s = $%d", col, arg))
		args = append(args, v)
		arg++
	}

	if fields.Title != nil {
		add("title", *fields.Title)
	}
	if fields.Code != nil {
		add("code", *fields.Code)
	}
	if fields.PriceCents != nil {
		add("price_cents", *fields.PriceCents)
	}
	if fields.Stock != nil {
		add("stock", *fields.Stock)
	}
	if fields.Category != nil {
		add("category", *fields.Category)
	}
	if fields.Thumbnails != nil {
		add("thumbnails", *fields.Thumbnails)
	}
	if fields.Status != nil {
		add("status", *fields.Status)
	}

	q := fmt.Sprintf(`
UPDATE products
SET %s
WHERE id = $1
RETURNING `+productColumns+`
`, strings.Join(set, ", "))

	row := s.db.QueryRow(ctx, q, args...)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, catalog.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, catalog.ErrDuplicateCode
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *CatalogStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
