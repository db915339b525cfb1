package catalog

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyclestore/internal/models"
)

// Finder runs one product query against the store.
type Finder interface {
	FindProducts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error)
}

// Search runs the text query when search text is present and falls back to the
// regex scan if it finds nothing.
func Search(ctx context.Context, finder Finder, p SearchParams) ([]models.Product, error) {
	if p.Search == "" {
		filter, opts := PlainQuery(p)
		products, err := finder.FindProducts(ctx, filter, opts)
		if err != nil {
			return nil, fmt.Errorf("filter products: %w", err)
		}
		return capResults(products), nil
	}

	filter, opts := TextQuery(p)
	products, err := finder.FindProducts(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	if len(products) > 0 {
		return capResults(products), nil
	}

	log.Printf("[CATALOG] [INFO] text search for %q empty, using regex fallback", p.Search)
	filter, opts = FallbackQuery(p)
	products, err = finder.FindProducts(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("fallback search: %w", err)
	}
	return capResults(products), nil
}

func capResults(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	if len(products) > MaxResults {
		return products[:MaxResults]
	}
	return products
}
