package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techshop_back_end/internal/models"

	"github.com/gocql/gocql"
)

// DefaultSettings are served until an admin saves the settings row.
func DefaultSettings() models.SiteSettings {
	return models.SiteSettings{
		SiteName:        "TechShop",
		PrimaryColor:    "#2563eb",
		SecondaryColor:  "#1e40af",
		WhatsappMessage: "Olá! Gostaria de saber mais sobre os produtos.",
	}
}

type SettingsRepository interface {
	GetSettings(ctx context.Context) (models.SiteSettings, error)
	SaveSettings(ctx context.Context, s *models.SiteSettings) error
}

var settingsColumns = []string{
	"id", "site_name", "logo_url", "primary_color", "secondary_color", "whatsapp_number",
	"whatsapp_message", "contact_email", "contact_phone", "address", "updated_at",
}

type ScyllaSettings struct {
	session *gocql.Session
}

func NewSettingsRepository(session *gocql.Session) *ScyllaSettings {
	return &ScyllaSettings{session: session}
}

// GetSettings returns the single settings row, or DefaultSettings when none exists.
func (r *ScyllaSettings) GetSettings(ctx context.Context) (models.SiteSettings, error) {
	stmt, _ := selectCQL("site_settings", settingsColumns, nil)
	var s models.SiteSettings
	err := r.session.Query(stmt+" LIMIT 1").WithContext(ctx).Scan(
		&s.ID, &s.SiteName, &s.LogoURL, &s.PrimaryColor, &s.SecondaryColor, &s.WhatsappNumber,
		&s.WhatsappMessage, &s.ContactEmail, &s.ContactPhone, &s.Address, &s.UpdatedAt,
	)
	if errors.Is(err, gocql.ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return models.SiteSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// SaveSettings upserts the row; s.ID must be set.
func (r *ScyllaSettings) SaveSettings(ctx context.Context, s *models.SiteSettings) error {
	s.UpdatedAt = time.Now().UTC()
	err := r.session.Query(insertCQL("site_settings", settingsColumns),
		s.ID, s.SiteName, s.LogoURL, s.PrimaryColor, s.SecondaryColor, s.WhatsappNumber,
		s.WhatsappMessage, s.ContactEmail, s.ContactPhone, s.Address, s.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
