package repository

import (
	"context"
	"fmt"
	"time"

	"techshop_back_end/internal/models"

	"github.com/gocql/gocql"
	"gopkg.in/inf.v0"
)

type ProductFilter struct {
	ActiveOnly   bool
	FeaturedOnly bool
	CategoryID   string
}

func (f ProductFilter) filters() []Filter {
	var out []Filter
	if f.ActiveOnly {
		out = append(out, Eq("is_active", true))
	}
	if f.FeaturedOnly {
		out = append(out, Eq("is_featured", true))
	}
	if f.CategoryID != "" {
		out = append(out, Eq("category_id", f.CategoryID))
	}
	return out
}

type ProductRepository interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context, f ProductFilter) (int, error)
}

var productColumns = []string{
	"id", "name", "description", "price", "sale_price", "stock", "category_id",
	"images", "specifications", "is_active", "is_featured", "created_at", "updated_at",
}

type ScyllaProducts struct {
	session *gocql.Session
}

func NewProductRepository(session *gocql.Session) *ScyllaProducts {
	return &ScyllaProducts{session: session}
}

type productRow struct {
	p         models.Product
	price     *inf.Dec
	salePrice *inf.Dec
}

func (r *productRow) dest() []any {
	return []any{
		&r.p.ID, &r.p.Name, &r.p.Description, &r.price, &r.salePrice, &r.p.Stock, &r.p.CategoryID,
		&r.p.Images, &r.p.Specifications, &r.p.IsActive, &r.p.IsFeatured, &r.p.CreatedAt, &r.p.UpdatedAt,
	}
}

func (r *productRow) product() models.Product {
	p := r.p
	p.Price = fromDec(r.price)
	p.SalePrice = fromDecPtr(r.salePrice)
	return p
}

// ListProducts returns matching products, newest first.
func (s *ScyllaProducts) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	stmt, args := selectCQL("products", productColumns, f.filters())
	iter := s.session.Query(stmt, args...).WithContext(ctx).Iter()

	var (
		out []models.Product
		row productRow
	)
	for iter.Scan(row.dest()...) {
		out = append(out, row.product())
		row = productRow{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	sortStable(out, func(p models.Product) int64 { return p.CreatedAt.UnixNano() }, Descending)
	return out, nil
}

func (s *ScyllaProducts) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := checkID("product", id); err != nil {
		return nil, err
	}
	stmt, args := selectCQL("products", productColumns, nil)
	var row productRow
	err := s.session.Query(stmt+" WHERE id = ?", append(args, id)...).WithContext(ctx).Scan(row.dest()...)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	p := row.product()
	return &p, nil
}

// SaveProduct upserts the product; the caller sets ID and timestamps.
func (s *ScyllaProducts) SaveProduct(ctx context.Context, p *models.Product) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	err := s.session.Query(insertCQL("products", productColumns),
		p.ID, p.Name, p.Description, toDec(p.Price), toDecPtr(p.SalePrice), p.Stock, p.CategoryID,
		p.Images, map[string]string(p.Specifications), p.IsActive, p.IsFeatured, p.CreatedAt, p.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("save product %s: %w", p.ID, err)
	}
	return nil
}

func (s *ScyllaProducts) DeleteProduct(ctx context.Context, id string) error {
	if err := checkID("product", id); err != nil {
		return err
	}
	if err := s.session.Query("DELETE FROM products WHERE id = ?", id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

func (s *ScyllaProducts) CountProducts(ctx context.Context, f ProductFilter) (int, error) {
	stmt, args := countCQL("products", f.filters())
	var n int64
	if err := s.session.Query(stmt, args...).WithContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return int(n), nil
}
