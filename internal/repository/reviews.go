package repository

import (
	"context"
	"fmt"
	"time"

	"techshop_back_end/internal/models"

	"github.com/gocql/gocql"
)

type ReviewFilter struct {
	ProductID    string
	ApprovedOnly bool
}

type ReviewRepository interface {
	ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error)
	GetReview(ctx context.Context, id string) (*models.Review, error)
	SaveReview(ctx context.Context, r *models.Review) error
	SetReviewApproved(ctx context.Context, id string, approved bool) error
	DeleteReview(ctx context.Context, id string) error
}

var reviewColumns = []string{"id", "product_id", "customer_name", "customer_email", "rating", "comment", "is_approved", "created_at"}

type ScyllaReviews struct {
	session *gocql.Session
}

func NewReviewRepository(session *gocql.Session) *ScyllaReviews {
	return &ScyllaReviews{session: session}
}

func reviewDest(r *models.Review) []any {
	return []any{&r.ID, &r.ProductID, &r.CustomerName, &r.CustomerEmail, &r.Rating, &r.Comment, &r.IsApproved, &r.CreatedAt}
}

// ListReviews returns matching reviews, newest first.
func (s *ScyllaReviews) ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error) {
	var filters []Filter
	if f.ProductID != "" {
		filters = append(filters, Eq("product_id", f.ProductID))
	}
	if f.ApprovedOnly {
		filters = append(filters, Eq("is_approved", true))
	}
	stmt, args := selectCQL("reviews", reviewColumns, filters)
	iter := s.session.Query(stmt, args...).WithContext(ctx).Iter()

	var (
		out []models.Review
		r   models.Review
	)
	for iter.Scan(reviewDest(&r)...) {
		out = append(out, r)
		r = models.Review{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	sortStable(out, func(r models.Review) int64 { return r.CreatedAt.UnixNano() }, Descending)
	return out, nil
}

func (s *ScyllaReviews) GetReview(ctx context.Context, id string) (*models.Review, error) {
	if err := checkID("review", id); err != nil {
		return nil, err
	}
	stmt, _ := selectCQL("reviews", reviewColumns, nil)
	var r models.Review
	if err := s.session.Query(stmt+" WHERE id = ?", id).WithContext(ctx).Scan(reviewDest(&r)...); err != nil {
		return nil, notFound(err, "review", id)
	}
	return &r, nil
}

func (s *ScyllaReviews) SaveReview(ctx context.Context, r *models.Review) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	err := s.session.Query(insertCQL("reviews", reviewColumns),
		r.ID, r.ProductID, r.CustomerName, r.CustomerEmail, r.Rating, r.Comment, r.IsApproved, r.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("save review %s: %w", r.ID, err)
	}
	return nil
}

// SetReviewApproved only updates existing rows.
func (s *ScyllaReviews) SetReviewApproved(ctx context.Context, id string, approved bool) error {
	applied, err := s.session.Query("UPDATE reviews SET is_approved = ? WHERE id = ? IF EXISTS", approved, id).
		WithContext(ctx).ScanCAS()
	if err != nil {
		return fmt.Errorf("approve review %s: %w", id, err)
	}
	if !applied {
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *ScyllaReviews) DeleteReview(ctx context.Context, id string) error {
	if err := checkID("review", id); err != nil {
		return err
	}
	if err := s.session.Query("DELETE FROM reviews WHERE id = ?", id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("delete review %s: %w", id, err)
	}
	return nil
}
