package admin

import (
	"context"
	"io"

	backoffice "techshop_back_end/internal/admin"
)

// Uploader stores admin images and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, folder string, r io.Reader, size int64, contentType string) (string, error)
}

// Handler serves /api/admin. Every route sits behind AuthRequired and RequireAdmin.
type Handler struct {
	office  *backoffice.Backoffice
	uploads Uploader
}

func New(office *backoffice.Backoffice, uploads Uploader) *Handler {
	return &Handler{office: office, uploads: uploads}
}
