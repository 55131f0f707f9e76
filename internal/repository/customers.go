package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"techshop_back_end/internal/models"

	"github.com/gocql/gocql"
)

type CustomerRepository interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, email, hash string) error
	GetProfile(ctx context.Context, userID string) (*models.CustomerProfile, error)
	SaveProfile(ctx context.Context, p *models.CustomerProfile) error
}

type ScyllaCustomers struct {
	session *gocql.Session
}

func NewCustomerRepository(session *gocql.Session) *ScyllaCustomers {
	return &ScyllaCustomers{session: session}
}

// NormalizeEmail is the account key form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount inserts the account unless the email is taken.
func (s *ScyllaCustomers) CreateAccount(ctx context.Context, a *models.Account) error {
	a.Email = NormalizeEmail(a.Email)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	applied, err := s.session.Query(
		`INSERT INTO accounts (email, user_id, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?) IF NOT EXISTS`,
		a.Email, a.ID, a.PasswordHash, a.Role, a.CreatedAt,
	).WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return fmt.Errorf("create account %s: %w", a.Email, err)
	}
	if !applied {
		return fmt.Errorf("account %s: %w", a.Email, ErrAlreadyExists)
	}
	return nil
}

func (s *ScyllaCustomers) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = NormalizeEmail(email)
	a := models.Account{Email: email}
	err := s.session.Query(`SELECT user_id, password_hash, role, created_at FROM accounts WHERE email = ?`, email).
		WithContext(ctx).Scan(&a.ID, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err, "account", email)
	}
	return &a, nil
}

// UpdatePasswordHash replaces the stored hash, used to upgrade imported bcrypt hashes.
func (s *ScyllaCustomers) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	email = NormalizeEmail(email)
	err := s.session.Query(`UPDATE accounts SET password_hash = ? WHERE email = ? IF EXISTS`, hash, email).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("update password %s: %w", email, err)
	}
	return nil
}

var profileColumns = []string{"user_id", "id", "name", "email", "phone", "address", "created_at", "updated_at"}

func (s *ScyllaCustomers) GetProfile(ctx context.Context, userID string) (*models.CustomerProfile, error) {
	stmt, _ := selectCQL("customer_profiles", profileColumns, nil)
	var p models.CustomerProfile
	err := s.session.Query(stmt+" WHERE user_id = ?", userID).WithContext(ctx).
		Scan(&p.UserID, &p.ID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "profile", userID)
	}
	return &p, nil
}

// SaveProfile upserts the profile keyed by user id.
func (s *ScyllaCustomers) SaveProfile(ctx context.Context, p *models.CustomerProfile) error {
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	err := s.session.Query(insertCQL("customer_profiles", profileColumns),
		p.UserID, p.ID, p.Name, p.Email, p.Phone, p.Address, p.CreatedAt, p.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	return nil
}
