package models

import "time"

// Banner is one slide of the home page hero slider.
type Banner struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle,omitempty"`
	ImageURL   string    `json:"image_url"`
	ButtonText string    `json:"button_text,omitempty"`
	ButtonLink string    `json:"button_link,omitempty"`
	IsActive   bool      `json:"is_active"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}
