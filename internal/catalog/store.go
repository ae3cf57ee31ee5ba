package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrNotFound is returned when no product has the requested id
var ErrNotFound = errors.New("product not found")

const productColumns = `id, name, description, price, primary_image_url,
	COALESCE(images, '{}'::text[]), category, brand, sku, stock_count,
	COALESCE(tags, '{}'::text[]), rating, review_count, popularity, created_at, updated_at`

// Store handles database operations for products
type Store struct {
	db *sql.DB
}

// NewStore creates a new product store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	var images, tags pq.StringArray
	var rating, popularity sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.PrimaryImageURL,
		&images, &p.Category, &p.Brand, &p.SKU, &p.StockCount,
		&tags, &rating, &p.ReviewCount, &popularity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}

	p.Images = []string(images)
	p.Tags = []string(tags)
	if rating.Valid {
		p.Rating = &rating.Float64
	}
	if popularity.Valid {
		p.Popularity = &popularity.Float64
	}
	return p, nil
}

// likePattern escapes LIKE metacharacters so search text matches literally
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// where builds the WHERE clause shared by ListProducts and CountProducts
func (q ListQuery) where(args []any) (string, []any) {
	var conds []string
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListProducts returns the products matching q in insertion order, oldest first
func (s *Store) ListProducts(ctx context.Context, q ListQuery) ([]Product, error) {
	where, args := q.where(nil)
	query := "SELECT " + productColumns + " FROM catalog.products" + where + " ORDER BY created_at, id"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListProducts query: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ListProducts scan: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns how many products match q, ignoring its limit and offset
func (s *Store) CountProducts(ctx context.Context, q ListQuery) (int, error) {
	where, args := q.where(nil)

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog.products"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountProducts: %w", err)
	}
	return count, nil
}

// GetProduct retrieves a single product by ID
func (s *Store) GetProduct(ctx context.Context, id string) (*Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM catalog.products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetProduct query: %w", err)
	}
	return &p, nil
}

// CreateProduct inserts a product under a fresh uuid
func (s *Store) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	query := `
		INSERT INTO catalog.products (
			id, name, description, price, primary_image_url, images,
			category, brand, sku, stock_count, tags, rating, popularity
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + productColumns

	row := s.db.QueryRowContext(ctx, query,
		uuid.NewString(), req.Name, req.Description, req.Price, req.PrimaryImageURL, pq.Array(req.Images),
		req.Category, req.Brand, req.SKU, req.StockCount, pq.Array(req.Tags), req.Rating, req.Popularity,
	)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("CreateProduct: %w", err)
	}
	return &p, nil
}

// UpdateProduct applies the non-nil fields of req
func (s *Store) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	sets := []string{"updated_at = now()"}
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Price != nil {
		set("price", *req.Price)
	}
	if req.PrimaryImageURL != nil {
		set("primary_image_url", *req.PrimaryImageURL)
	}
	if req.Images != nil {
		set("images", pq.Array(*req.Images))
	}
	if req.Category != nil {
		set("category", *req.Category)
	}
	if req.Brand != nil {
		set("brand", *req.Brand)
	}
	if req.SKU != nil {
		set("sku", *req.SKU)
	}
	if req.StockCount != nil {
		set("stock_count", *req.StockCount)
	}
	if req.Tags != nil {
		set("tags", pq.Array(*req.Tags))
	}
	if req.Rating != nil {
		set("rating", *req.Rating)
	}
	if req.Popularity != nil {
		set("popularity", *req.Popularity)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE catalog.products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), productColumns)

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateProduct: %w", err)
	}
	return &p, nil
}

// DeleteProduct deletes a product by ID
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM catalog.products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("DeleteProduct: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteProduct rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
