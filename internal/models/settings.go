package models

import "time"

// SiteSettings is the single row of storefront-wide settings.
type SiteSettings struct {
	ID              string    `json:"id"`
	SiteName        string    `json:"site_name"`
	LogoURL         string    `json:"logo_url,omitempty"`
	PrimaryColor    string    `json:"primary_color"`
	SecondaryColor  string    `json:"secondary_color"`
	WhatsappNumber  string    `json:"whatsapp_number,omitempty"`
	WhatsappMessage string    `json:"whatsapp_message,omitempty"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	ContactPhone    string    `json:"contact_phone,omitempty"`
	Address         string    `json:"address,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
