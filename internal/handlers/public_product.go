package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyclestore/internal/catalog"
)

/*
GET /products
- pagination is optional
- without page + limit the whole catalog is returned
*/
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		paginated := pageStr != "" || limitStr != ""

		var page, limit int64
		if paginated {
			var err error
			page, limit, err = parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondDomainError(c, route, err)
				return
			}
			findOptions.
				SetSkip((page - 1) * limit).
				SetLimit(limit)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		products, err := newProductFinder(db).FindProducts(ctx, bson.M{}, findOptions)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if !paginated {
			c.JSON(http.StatusOK, products)
			return
		}

		total, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		productID, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := findProduct(ctx, db, productID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

// SearchProducts ranks by text score and falls back to a regex scan. At most
// catalog.MaxResults products are returned.
func SearchProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/search"
		defer handlePanic(c, route)

		params, err := catalog.ParseSearchParams(c.Request.URL.Query())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		products, err := catalog.Search(ctx, newProductFinder(db), params)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, products)
	}
}

func FilterProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/filter"
		defer handlePanic(c, route)

		params, err := catalog.ParseFilterParams(c.Request.URL.Query())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		products, err := newProductFinder(db).FindProducts(ctx, params.Filter(), nil)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, products)
	}
}
