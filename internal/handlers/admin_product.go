package handlers

import (
	"log"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyclestore/internal/models"
)

/* =======================
   REQUEST MODELS
======================= */

type productRequest struct {
	Name             string            `json:"name" binding:"required"`
	Type             string            `json:"type" binding:"required,oneof=E-cycle Cycle Part Accessory"`
	Brand            string            `json:"brand" binding:"required"`
	Model            string            `json:"model" binding:"required"`
	Year             int               `json:"year" binding:"required,gte=1900,notfutureyear"`
	Price            float64           `json:"price" binding:"required,gt=0"`
	ImageURLs        []string          `json:"imageUrls"`
	Description      string            `json:"description"`
	Categories       models.StringList `json:"categories"`
	Tags             models.StringList `json:"tags"`
	Weight           float64           `json:"weight" binding:"gte=0"`
	Dimensions       models.Dimensions `json:"dimensions"`
	Material         string            `json:"material"`
	Color            string            `json:"color"`
	Size             string            `json:"size"`
	Condition        string            `json:"condition"`
	Warranty         bool              `json:"warranty"`
	WarrantyDuration int               `json:"warrantyDuration" binding:"gte=0"`
	ShippingCost     float64           `json:"shippingCost" binding:"gte=0"`
	ShippingDuration int               `json:"shippingDuration" binding:"gte=0"`
}

func (r productRequest) toProduct(now time.Time) models.Product {
	return models.Product{
		Name:             strings.TrimSpace(r.Name),
		Type:             r.Type,
		Brand:            strings.TrimSpace(r.Brand),
		Model:            strings.TrimSpace(r.Model),
		Year:             r.Year,
		Price:            r.Price,
		ImageURLs:        normalizeStrings(r.ImageURLs),
		Description:      strings.TrimSpace(r.Description),
		Categories:       models.StringList(normalizeStrings(r.Categories)),
		Tags:             models.StringList(normalizeStrings(r.Tags)),
		Weight:           r.Weight,
		Dimensions:       r.Dimensions,
		Material:         strings.TrimSpace(r.Material),
		Color:            strings.TrimSpace(r.Color),
		Size:             strings.TrimSpace(r.Size),
		Condition:        strings.TrimSpace(r.Condition),
		Warranty:         r.Warranty,
		WarrantyDuration: r.WarrantyDuration,
		ShippingCost:     r.ShippingCost,
		ShippingDuration: r.ShippingDuration,
		Reviews:          []models.Review{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

type ProductUpdateRequest struct {
	Name             *string            `json:"name"`
	Type             *string            `json:"type"`
	Brand            *string            `json:"brand"`
	Model            *string            `json:"model"`
	Year             *int               `json:"year"`
	Price            *float64           `json:"price"`
	ImageURLs        *[]string          `json:"imageUrls"`
	Description      *string            `json:"description"`
	Categories       *models.StringList `json:"categories"`
	Tags             *models.StringList `json:"tags"`
	Weight           *float64           `json:"weight"`
	Dimensions       *models.Dimensions `json:"dimensions"`
	Material         *string            `json:"material"`
	Color            *string            `json:"color"`
	Size             *string            `json:"size"`
	Condition        *string            `json:"condition"`
	Warranty         *bool              `json:"warranty"`
	WarrantyDuration *int               `json:"warrantyDuration"`
	ShippingCost     *float64           `json:"shippingCost"`
	ShippingDuration *int               `json:"shippingDuration"`
}

// apply copies the present fields onto p and returns the $set document for
// them, keyed by bson field name.
func (r ProductUpdateRequest) apply(p *models.Product) bson.M {
	set := bson.M{}
	setString := func(key string, value *string, dst *string) {
		if value != nil {
			*dst = strings.TrimSpace(*value)
			set[key] = *dst
		}
	}

	setString("name", r.Name, &p.Name)
	setString("type", r.Type, &p.Type)
	setString("brand", r.Brand, &p.Brand)
	setString("model", r.Model, &p.Model)
	setString("description", r.Description, &p.Description)
	setString("material", r.Material, &p.Material)
	setString("color", r.Color, &p.Color)
	setString("size", r.Size, &p.Size)
	setString("condition", r.Condition, &p.Condition)

	if r.Year != nil {
		p.Year = *r.Year
		set["year"] = p.Year
	}
	if r.Price != nil {
		p.Price = *r.Price
		set["price"] = p.Price
	}
	if r.ImageURLs != nil {
		p.ImageURLs = normalizeStrings(*r.ImageURLs)
		set["imageUrls"] = p.ImageURLs
	}
	if r.Categories != nil {
		p.Categories = models.StringList(normalizeStrings(*r.Categories))
		set["categories"] = p.Categories
	}
	if r.Tags != nil {
		p.Tags = models.StringList(normalizeStrings(*r.Tags))
		set["tags"] = p.Tags
	}
	if r.Weight != nil {
		p.Weight = *r.Weight
		set["weight"] = p.Weight
	}
	if r.Dimensions != nil {
		p.Dimensions = *r.Dimensions
		set["dimensions"] = p.Dimensions
	}
	if r.Warranty != nil {
		p.Warranty = *r.Warranty
		set["warranty"] = p.Warranty
	}
	if r.WarrantyDuration != nil {
		p.WarrantyDuration = *r.WarrantyDuration
		set["warrantyDuration"] = p.WarrantyDuration
	}
	if r.ShippingCost != nil {
		p.ShippingCost = *r.ShippingCost
		set["shippingCost"] = p.ShippingCost
	}
	if r.ShippingDuration != nil {
		p.ShippingDuration = *r.ShippingDuration
		set["shippingDuration"] = p.ShippingDuration
	}
	return set
}

/* =======================
   HELPERS
======================= */

func normalizeStrings(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))

	for _, v := range values {
		value := strings.TrimSpace(v)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func mapKeys(input bson.M) []string {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

/* =======================
   GET (ADMIN) - LIST
======================= */

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		filter := bson.M{}
		if productType := strings.TrimSpace(c.Query("type")); productType != "" {
			filter["type"] = productType
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		products, err := newProductFinder(db).FindProducts(ctx, filter, opts)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/products"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := time.Now()
		product := req.toProduct(now)
		if err := product.Validate(now); err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		product.ID = res.InsertedID.(primitive.ObjectID)
		product.Finalize()
		log.Println("[PRODUCT] [INFO] product created:", product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := findProduct(ctx, db, id)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		updateSet := req.apply(&product)
		if len(updateSet) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		now := time.Now()
		if err := product.Validate(now); err != nil {
			respondDomainError(c, route, err)
			return
		}
		updateSet["updatedAt"] = now
		log.Printf("[PRODUCT] [INFO] updating %s fields=%v", id.Hex(), mapKeys(updateSet))

		result, err := db.Collection("products").UpdateByID(ctx, id, bson.M{"$set": updateSet})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if result.MatchedCount == 0 {
			respondDomainError(c, route, models.ErrProductNotFound)
			return
		}

		product.UpdatedAt = now
		c.JSON(http.StatusOK, product)
	}
}

/* =======================
   DELETE
======================= */

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondDomainError(c, route, models.ErrProductNotFound)
			return
		}

		log.Println("[PRODUCT] [INFO] product deleted:", id.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
