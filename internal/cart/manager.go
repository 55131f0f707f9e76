package cart

import (
	"context"

	"techshop_back_end/internal/models"
)

// Manager hands out the cart of a session. Stores are not cached: each
// request reloads the persisted list so concurrent tabs see each other's writes.
type Manager struct {
	persister Persister
}

func NewManager(persister Persister) *Manager {
	return &Manager{persister: persister}
}

func (m *Manager) Open(ctx context.Context, sessionKey string) (*Store, error) {
	return Open(ctx, m.persister, sessionKey)
}

// Snapshot loads the lines of a cart without opening a store.
func (m *Manager) Snapshot(ctx context.Context, sessionKey string) ([]models.CartLineItem, error) {
	return m.persister.Load(ctx, sessionKey)
}
