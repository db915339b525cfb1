// Package seed loads a YAML product catalog into the store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"

	"cyclestore/internal/models"
)

type catalogFile struct {
	Products []productEntry `yaml:"products"`
}

type productEntry struct {
	Name             string            `yaml:"name"`
	Type             string            `yaml:"type"`
	Brand            string            `yaml:"brand"`
	Model            string            `yaml:"model"`
	Year             int               `yaml:"year"`
	Price            float64           `yaml:"price"`
	ImageURLs        []string          `yaml:"imageUrls"`
	Description      string            `yaml:"description"`
	Categories       models.StringList `yaml:"categories"`
	Tags             models.StringList `yaml:"tags"`
	Weight           float64           `yaml:"weight"`
	Dimensions       models.Dimensions `yaml:"dimensions"`
	Material         string            `yaml:"material"`
	Color            string            `yaml:"color"`
	Size             string            `yaml:"size"`
	Condition        string            `yaml:"condition"`
	Warranty         bool              `yaml:"warranty"`
	WarrantyDuration int               `yaml:"warrantyDuration"`
	ShippingCost     float64           `yaml:"shippingCost"`
	ShippingDuration int               `yaml:"shippingDuration"`
}

func (e productEntry) product() models.Product {
	return models.Product{
		Name:             strings.TrimSpace(e.Name),
		Type:             e.Type,
		Brand:            strings.TrimSpace(e.Brand),
		Model:            strings.TrimSpace(e.Model),
		Year:             e.Year,
		Price:            e.Price,
		ImageURLs:        e.ImageURLs,
		Description:      e.Description,
		Categories:       e.Categories,
		Tags:             e.Tags,
		Weight:           e.Weight,
		Dimensions:       e.Dimensions,
		Material:         e.Material,
		Color:            e.Color,
		Size:             e.Size,
		Condition:        e.Condition,
		Warranty:         e.Warranty,
		WarrantyDuration: e.WarrantyDuration,
		ShippingCost:     e.ShippingCost,
		ShippingDuration: e.ShippingDuration,
	}
}

// Parse decodes a catalog and validates every product. Unknown keys are
// rejected so typos in the file do not silently drop fields.
func Parse(r io.Reader, now time.Time) ([]models.Product, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed file is empty")
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	products := make([]models.Product, 0, len(file.Products))
	var errs []error
	for i, entry := range file.Products {
		p := entry.product()
		if err := p.Validate(now); err != nil {
			errs = append(errs, fmt.Errorf("product %d (%s): %w", i+1, p.Name, err))
			continue
		}
		products = append(products, p)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return products, nil
}

// Store upserts a single product and reports whether it was newly inserted.
type Store interface {
	UpsertProduct(ctx context.Context, p models.Product, now time.Time) (bool, error)
}

type Result struct {
	Inserted int
	Updated  int
}

// Apply upserts every product, stopping at the first store error.
func Apply(ctx context.Context, store Store, products []models.Product, now time.Time) (Result, error) {
	var res Result
	for _, p := range products {
		inserted, err := store.UpsertProduct(ctx, p, now)
		if err != nil {
			return res, fmt.Errorf("upsert %s %s %q: %w", p.Brand, p.Model, p.Name, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	log.Printf("[SEED] [INFO] %d inserted, %d updated", res.Inserted, res.Updated)
	return res, nil
}

// MongoStore keys products on (brand, model, name). Reviews and createdAt
// are only written on insert so reseeding keeps customer reviews.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("products")}
}

func (s *MongoStore) UpsertProduct(ctx context.Context, p models.Product, now time.Time) (bool, error) {
	filter, update := upsertDocuments(p, now)
	res, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func upsertDocuments(p models.Product, now time.Time) (bson.M, bson.M) {
	filter := bson.M{"brand": p.Brand, "model": p.Model, "name": p.Name}
	set := bson.M{
		"type":             p.Type,
		"year":             p.Year,
		"price":            p.Price,
		"imageUrls":        p.ImageURLs,
		"description":      p.Description,
		"categories":       p.Categories,
		"tags":             p.Tags,
		"weight":           p.Weight,
		"dimensions":       p.Dimensions,
		"material":         p.Material,
		"color":            p.Color,
		"size":             p.Size,
		"condition":        p.Condition,
		"warranty":         p.Warranty,
		"warrantyDuration": p.WarrantyDuration,
		"shippingCost":     p.ShippingCost,
		"shippingDuration": p.ShippingDuration,
		"updatedAt":        now,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"reviews":   []models.Review{},
			"createdAt": now,
		},
	}
	return filter, update
}
