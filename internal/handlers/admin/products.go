package admin

import (
	"encoding/json"
	"net/http"
	"strings"

	"techshop_back_end/internal/handlers"
	"techshop_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// imageList accepts a JSON array or the comma-separated text of the admin form.
type imageList []string

func (l *imageList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*l = nil
	for _, u := range strings.Split(text, ",") {
		if u = strings.TrimSpace(u); u != "" {
			*l = append(*l, u)
		}
	}
	return nil
}

type productInput struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	Stock          int              `json:"stock"`
	CategoryID     string           `json:"category_id"`
	Images         imageList        `json:"images"`
	Specifications json.RawMessage  `json:"specifications"`
	IsActive       *bool            `json:"is_active"`
	IsFeatured     bool             `json:"is_featured"`
}

// product builds the record; a zero sale price means no sale.
func (in productInput) product() (models.Product, error) {
	p := models.Product{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Images:      in.Images,
		IsActive:    in.IsActive == nil || *in.IsActive,
		IsFeatured:  in.IsFeatured,
	}
	if in.SalePrice != nil && !in.SalePrice.IsZero() {
		p.SalePrice = in.SalePrice
	}

	raw := strings.TrimSpace(string(in.Specifications))
	if raw == "" || raw == "null" {
		return p, nil
	}
	var text string
	if json.Unmarshal(in.Specifications, &text) == nil {
		raw = text
	}
	specs, err := models.ParseSpecifications(raw)
	if err != nil {
		return p, err
	}
	p.Specifications = specs
	return p, nil
}

func bindProduct(c *gin.Context) (models.Product, bool) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return models.Product{}, false
	}
	p, err := in.product()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Especificações inválidas"})
		return models.Product{}, false
	}
	return p, true
}

// GET /api/admin/products
func (h *Handler) ListProducts(c *gin.Context) {
	list, err := h.office.Products.List(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar produtos")
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	p, ok := bindProduct(c)
	if !ok {
		return
	}
	if err := h.office.CreateProduct(c.Request.Context(), &p); err != nil {
		handlers.Fail(c, err, "Erro ao salvar produto")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Produto criado com sucesso!", "product": p})
}

// PUT /api/admin/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	p, ok := bindProduct(c)
	if !ok {
		return
	}
	p.ID = c.Param("id")
	if err := h.office.UpdateProduct(c.Request.Context(), &p); err != nil {
		handlers.Fail(c, err, "Erro ao salvar produto")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produto atualizado com sucesso!", "product": p})
}

// DELETE /api/admin/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.office.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Fail(c, err, "Erro ao excluir produto")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produto excluído com sucesso!"})
}
