package repository

import (
	"context"
	"fmt"
	"time"

	"techshop_back_end/internal/models"

	"github.com/gocql/gocql"
)

type BannerRepository interface {
	ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error)
	SaveBanner(ctx context.Context, b *models.Banner) error
	DeleteBanner(ctx context.Context, id string) error
}

var bannerColumns = []string{"id", "title", "subtitle", "image_url", "button_text", "button_link", "is_active", "sort_order", "created_at"}

type ScyllaBanners struct {
	session *gocql.Session
}

func NewBannerRepository(session *gocql.Session) *ScyllaBanners {
	return &ScyllaBanners{session: session}
}

func bannerDest(b *models.Banner) []any {
	return []any{&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &b.ButtonText, &b.ButtonLink, &b.IsActive, &b.SortOrder, &b.CreatedAt}
}

// SortBanners orders slides by sort_order, older first on ties.
func SortBanners(list []models.Banner) {
	sortStable(list, func(b models.Banner) int64 { return b.CreatedAt.UnixNano() }, Ascending)
	sortStable(list, func(b models.Banner) int { return b.SortOrder }, Ascending)
}

func (s *ScyllaBanners) ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	var filters []Filter
	if activeOnly {
		filters = append(filters, Eq("is_active", true))
	}
	stmt, args := selectCQL("banner_images", bannerColumns, filters)
	iter := s.session.Query(stmt, args...).WithContext(ctx).Iter()

	var (
		out []models.Banner
		b   models.Banner
	)
	for iter.Scan(bannerDest(&b)...) {
		out = append(out, b)
		b = models.Banner{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	SortBanners(out)
	return out, nil
}

func (s *ScyllaBanners) SaveBanner(ctx context.Context, b *models.Banner) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	err := s.session.Query(insertCQL("banner_images", bannerColumns),
		b.ID, b.Title, b.Subtitle, b.ImageURL, b.ButtonText, b.ButtonLink, b.IsActive, b.SortOrder, b.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("save banner %s: %w", b.ID, err)
	}
	return nil
}

func (s *ScyllaBanners) DeleteBanner(ctx context.Context, id string) error {
	if err := checkID("banner", id); err != nil {
		return err
	}
	if err := s.session.Query("DELETE FROM banner_images WHERE id = ?", id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("delete banner %s: %w", id, err)
	}
	return nil
}
