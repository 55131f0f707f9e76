package repository

import (
	"context"
	"fmt"
	"time"

	"techshop_back_end/internal/models"

	"github.com/gocql/gocql"
)

type CategoryRepository interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	SaveCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

var categoryColumns = []string{"id", "name", "description", "image_url", "is_active", "sort_order", "created_at", "updated_at"}

type ScyllaCategories struct {
	session *gocql.Session
}

func NewCategoryRepository(session *gocql.Session) *ScyllaCategories {
	return &ScyllaCategories{session: session}
}

func categoryDest(c *models.Category) []any {
	return []any{&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt}
}

// SortCategories orders by sort_order, then name.
func SortCategories(list []models.Category) {
	sortStable(list, func(c models.Category) string { return c.Name }, Ascending)
	sortStable(list, func(c models.Category) int { return c.SortOrder }, Ascending)
}

func (s *ScyllaCategories) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var filters []Filter
	if activeOnly {
		filters = append(filters, Eq("is_active", true))
	}
	stmt, args := selectCQL("categories", categoryColumns, filters)
	iter := s.session.Query(stmt, args...).WithContext(ctx).Iter()

	var (
		out []models.Category
		c   models.Category
	)
	for iter.Scan(categoryDest(&c)...) {
		out = append(out, c)
		c = models.Category{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	SortCategories(out)
	return out, nil
}

func (s *ScyllaCategories) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	if err := checkID("category", id); err != nil {
		return nil, err
	}
	stmt, _ := selectCQL("categories", categoryColumns, nil)
	var c models.Category
	if err := s.session.Query(stmt+" WHERE id = ?", id).WithContext(ctx).Scan(categoryDest(&c)...); err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

func (s *ScyllaCategories) SaveCategory(ctx context.Context, c *models.Category) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
	err := s.session.Query(insertCQL("categories", categoryColumns),
		c.ID, c.Name, c.Description, c.ImageURL, c.IsActive, c.SortOrder, c.CreatedAt, c.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("save category %s: %w", c.ID, err)
	}
	return nil
}

func (s *ScyllaCategories) DeleteCategory(ctx context.Context, id string) error {
	if err := checkID("category", id); err != nil {
		return err
	}
	if err := s.session.Query("DELETE FROM categories WHERE id = ?", id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}
