package admin

import (
	"errors"
	"fmt"
	"strings"

	"techshop_back_end/internal/models"
)

var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func ValidateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("nome obrigatório")
	}
	if p.Price.IsNegative() {
		return invalid("preço inválido")
	}
	if p.SalePrice != nil && p.SalePrice.IsNegative() {
		return invalid("preço promocional inválido")
	}
	if p.Stock < 0 {
		return invalid("estoque inválido")
	}
	if err := p.Specifications.Validate(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

func ValidateCategory(c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("nome obrigatório")
	}
	return nil
}

func ValidateBanner(b *models.Banner) error {
	b.Title = strings.TrimSpace(b.Title)
	b.ImageURL = strings.TrimSpace(b.ImageURL)
	if b.Title == "" {
		return invalid("título obrigatório")
	}
	if b.ImageURL == "" {
		return invalid("imagem obrigatória")
	}
	return nil
}
