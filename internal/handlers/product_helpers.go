package handlers

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyclestore/internal/models"
)

// productFinder adapts the products collection to catalog.Finder.
type productFinder struct {
	collection *mongo.Collection
}

func newProductFinder(db *mongo.Database) productFinder {
	return productFinder{collection: db.Collection("products")}
}

func (f productFinder) FindProducts(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := f.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeProducts(ctx, cursor)
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		product.Finalize()
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func findProduct(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (models.Product, error) {
	var product models.Product
	err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, models.ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	product.Finalize()
	return product, nil
}

// findProductsByIDs loads the given products in one query. Missing ids are
// simply absent from the result.
func findProductsByIDs(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	found := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	products, err := newProductFinder(db).FindProducts(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, product := range products {
		found[product.ID] = product
	}
	return found, nil
}

// cartLine is a cart item with its product expanded. Product is nil when the
// referenced product has been deleted from the catalog.
type cartLine struct {
	ID        string             `json:"id"`
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
	Product   *models.Product    `json:"product"`
}

func cartProductIDs(cart []models.CartItem) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func expandCart(cart []models.CartItem, products map[primitive.ObjectID]models.Product) []cartLine {
	lines := make([]cartLine, 0, len(cart))
	for _, item := range cart {
		line := cartLine{ID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity}
		if product, ok := products[item.ProductID]; ok {
			line.Product = &product
		}
		lines = append(lines, line)
	}
	return lines
}

// expandWishlist keeps wishlist order and skips products that no longer exist.
func expandWishlist(ids []primitive.ObjectID, products map[primitive.ObjectID]models.Product) []models.Product {
	expanded := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := products[id]; ok {
			expanded = append(expanded, product)
		}
	}
	return expanded
}

func populateCart(ctx context.Context, db *mongo.Database, cart []models.CartItem) ([]cartLine, error) {
	products, err := findProductsByIDs(ctx, db, cartProductIDs(cart))
	if err != nil {
		return nil, err
	}
	return expandCart(cart, products), nil
}
