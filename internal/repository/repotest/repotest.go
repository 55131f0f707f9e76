// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"

	"github.com/google/uuid"
)

// Store implements every repository interface over maps.
// Set Fail to make the next write return that error.
type Store struct {
	mu sync.Mutex

	products   map[string]models.Product
	categories map[string]models.Category
	banners    map[string]models.Banner
	orders     map[string]models.Order
	items      map[string][]models.OrderItem
	reviews    map[string]models.Review
	accounts   map[string]models.Account
	profiles   map[string]models.CustomerProfile
	settings   *models.SiteSettings

	Fail   error
	Writes int
	Reads  int
}

func New() *Store {
	return &Store{
		products:   map[string]models.Product{},
		categories: map[string]models.Category{},
		banners:    map[string]models.Banner{},
		orders:     map[string]models.Order{},
		items:      map[string][]models.OrderItem{},
		reviews:    map[string]models.Review{},
		accounts:   map[string]models.Account{},
		profiles:   map[string]models.CustomerProfile{},
	}
}

var (
	_ repository.ProductRepository  = (*Store)(nil)
	_ repository.CategoryRepository = (*Store)(nil)
	_ repository.BannerRepository   = (*Store)(nil)
	_ repository.OrderRepository    = (*Store)(nil)
	_ repository.ReviewRepository   = (*Store)(nil)
	_ repository.SettingsRepository = (*Store)(nil)
	_ repository.CustomerRepository = (*Store)(nil)
)

func (s *Store) write() error {
	s.Writes++
	if err := s.Fail; err != nil {
		s.Fail = nil
		return err
	}
	return nil
}

func values[T any](m map[string]T, keep func(T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func newestFirst[T any](list []T, at func(T) time.Time) {
	slices.SortStableFunc(list, func(a, b T) int { return at(b).Compare(at(a)) })
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, repository.ErrNotFound)
}

// ---------- products ----------

func (s *Store) ListProducts(_ context.Context, f repository.ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	out := values(s.products, func(p models.Product) bool {
		return (!f.ActiveOnly || p.IsActive) && (!f.FeaturedOnly || p.IsFeatured) &&
			(f.CategoryID == "" || p.CategoryID == f.CategoryID)
	})
	newestFirst(out, func(p models.Product) time.Time { return p.CreatedAt })
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	return &p, nil
}

func (s *Store) SaveProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	s.products[p.ID] = *p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	delete(s.products, id)
	return nil
}

func (s *Store) CountProducts(ctx context.Context, f repository.ProductFilter) (int, error) {
	list, err := s.ListProducts(ctx, f)
	return len(list), err
}

// ---------- categories ----------

func (s *Store) ListCategories(_ context.Context, activeOnly bool) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	out := values(s.categories, func(c models.Category) bool { return !activeOnly || c.IsActive })
	repository.SortCategories(out)
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	return &c, nil
}

func (s *Store) SaveCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	delete(s.categories, id)
	return nil
}

// ---------- banners ----------

func (s *Store) ListBanners(_ context.Context, activeOnly bool) ([]models.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	out := values(s.banners, func(b models.Banner) bool { return !activeOnly || b.IsActive })
	repository.SortBanners(out)
	return out, nil
}

func (s *Store) SaveBanner(_ context.Context, b *models.Banner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	s.banners[b.ID] = *b
	return nil
}

func (s *Store) DeleteBanner(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	delete(s.banners, id)
	return nil
}

// ---------- orders ----------

func (s *Store) CreateOrder(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
		o.UpdatedAt = o.CreatedAt
	}
	s.orders[o.ID] = *o
	return nil
}

func (s *Store) CreateOrderItems(_ context.Context, orderID string, items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	s.items[orderID] = append(s.items[orderID], items...)
	return nil
}

func (s *Store) MarkItemsConfirmed(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	o, ok := s.orders[orderID]
	if !ok {
		return notFound("order", orderID)
	}
	o.ItemsConfirmed = true
	s.orders[orderID] = o
	return nil
}

func (s *Store) ListOrders(_ context.Context, f repository.OrderFilter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	out := values(s.orders, func(o models.Order) bool {
		return (f.UserID == "" || o.UserID == f.UserID) && (f.Status == "" || o.Status == f.Status) &&
			(f.PaymentStatus == "" || o.PaymentStatus == f.PaymentStatus) && (!f.Incomplete || !o.ItemsConfirmed)
	})
	newestFirst(out, func(o models.Order) time.Time { return o.CreatedAt })
	return out, nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, notFound("order", id)
	}
	return &o, nil
}

func (s *Store) GetOrderByNumber(_ context.Context, number string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNumber == number {
			return &o, nil
		}
	}
	return nil, notFound("order", number)
}

func (s *Store) ListOrderItems(_ context.Context, orderID string) ([]models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items[orderID]), nil
}

func (s *Store) UpdateOrder(_ context.Context, id string, u repository.OrderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	o, ok := s.orders[id]
	if !ok {
		return notFound("order", id)
	}
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	if u.TrackingCode != nil {
		o.TrackingCode = *u.TrackingCode
	}
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return nil
}

func (s *Store) CountOrders(ctx context.Context, f repository.OrderFilter) (int, error) {
	list, err := s.ListOrders(ctx, f)
	return len(list), err
}

// ---------- reviews ----------

func (s *Store) ListReviews(_ context.Context, f repository.ReviewFilter) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	out := values(s.reviews, func(r models.Review) bool {
		return (f.ProductID == "" || r.ProductID == f.ProductID) && (!f.ApprovedOnly || r.IsApproved)
	})
	newestFirst(out, func(r models.Review) time.Time { return r.CreatedAt })
	return out, nil
}

func (s *Store) GetReview(_ context.Context, id string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, notFound("review", id)
	}
	return &r, nil
}

func (s *Store) SaveReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	s.reviews[r.ID] = *r
	return nil
}

func (s *Store) SetReviewApproved(_ context.Context, id string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	r, ok := s.reviews[id]
	if !ok {
		return notFound("review", id)
	}
	r.IsApproved = approved
	s.reviews[id] = r
	return nil
}

func (s *Store) DeleteReview(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	delete(s.reviews, id)
	return nil
}

// ---------- settings ----------

func (s *Store) GetSettings(_ context.Context) (models.SiteSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return repository.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, st *models.SiteSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	cp := *st
	s.settings = &cp
	return nil
}

// ---------- customers ----------

func (s *Store) CreateAccount(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	email := repository.NormalizeEmail(a.Email)
	if _, ok := s.accounts[email]; ok {
		return repository.ErrAlreadyExists
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = email
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.accounts[email] = *a
	return nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[repository.NormalizeEmail(email)]
	if !ok {
		return nil, notFound("account", email)
	}
	return &a, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	email = repository.NormalizeEmail(email)
	a, ok := s.accounts[email]
	if !ok {
		return notFound("account", email)
	}
	a.PasswordHash = hash
	s.accounts[email] = a
	return nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (*models.CustomerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, notFound("profile", userID)
	}
	return &p, nil
}

func (s *Store) SaveProfile(_ context.Context, p *models.CustomerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(); err != nil {
		return err
	}
	if p.UserID == "" {
		return errors.New("profile without user id")
	}
	s.profiles[p.UserID] = *p
	return nil
}
