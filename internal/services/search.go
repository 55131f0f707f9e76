package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"techshop_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/shopspring/decimal"
)

const ProductIndexName = "products"

var ErrSearchDisabled = errors.New("product search not configured")

// ProductDocument is what the search index keeps per product.
type ProductDocument struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	Image       string           `json:"image,omitempty"`
	CategoryID  string           `json:"category_id,omitempty"`
	Specs       []string         `json:"specs,omitempty"`
	IsFeatured  bool             `json:"is_featured"`
}

func DocumentFor(p models.Product) ProductDocument {
	doc := ProductDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		Image:       p.MainImage(),
		CategoryID:  p.CategoryID,
		IsFeatured:  p.IsFeatured,
	}
	for _, k := range p.Specifications.Keys() {
		doc.Specs = append(doc.Specs, k+": "+p.Specifications[k])
	}
	return doc
}

// ProductIndex keeps active products searchable in Elasticsearch.
type ProductIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewProductIndex returns an index that reports ErrSearchDisabled when client is nil.
func NewProductIndex(client *elasticsearch.Client) *ProductIndex {
	return &ProductIndex{client: client, index: ProductIndexName}
}

// Sync indexes an active product and removes an inactive one.
func (pi *ProductIndex) Sync(ctx context.Context, p models.Product) error {
	if !p.IsActive {
		return pi.Delete(ctx, p.ID)
	}
	if pi.client == nil {
		return ErrSearchDisabled
	}

	data, err := json.Marshal(DocumentFor(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      pi.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, pi.client)
	if err != nil {
		return fmt.Errorf("index product %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index product %s: %s", p.ID, res.Status())
	}
	log.Printf("✅ Product indexed: %s", p.Name)
	return nil
}

func (pi *ProductIndex) Delete(ctx context.Context, id string) error {
	if pi.client == nil {
		return ErrSearchDisabled
	}
	res, err := esapi.DeleteRequest{Index: pi.index, DocumentID: id, Refresh: "true"}.Do(ctx, pi.client)
	if err != nil {
		return fmt.Errorf("unindex product %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unindex product %s: %s", id, res.Status())
	}
	return nil
}

// SearchQuery builds a multi_match over name, description and specifications.
// Name matches weigh three times as much.
func SearchQuery(query string, limit int) map[string]any {
	return map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^3", "description", "specs"},
				"fuzziness": "AUTO",
			},
		},
	}
}

func (pi *ProductIndex) Search(ctx context.Context, query string, limit int) ([]ProductDocument, error) {
	if pi.client == nil {
		return nil, ErrSearchDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(SearchQuery(query, limit)); err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{pi.index}, Body: &buf}.Do(ctx, pi.client)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("search products: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source ProductDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]ProductDocument, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
