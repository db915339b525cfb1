package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"cyclestore/internal/models"
)

type reviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// AddProductReview appends with $push so concurrent reviews never overwrite
// each other.
func AddProductReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products/:id/ratings"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}
		productID, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := time.Now()
		review, err := models.NewReview(req.Rating, req.Review, "", now)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		review.ReviewerName = user.Name

		res, err := db.Collection("products").UpdateByID(ctx, productID, bson.M{
			"$push": bson.M{"reviews": review},
			"$set":  bson.M{"updatedAt": now},
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondDomainError(c, route, models.ErrProductNotFound)
			return
		}

		product, err := findProduct(ctx, db, productID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Printf("[REVIEW] [INFO] product %s reviewed by %s", productID.Hex(), userID.Hex())
		c.JSON(http.StatusCreated, gin.H{"review": review, "product": product})
	}
}

func GetProductReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id/ratings"
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

		c.JSON(http.StatusOK, gin.H{
			"reviews":       product.Reviews,
			"averageRating": product.AverageRating,
			"reviewCount":   product.ReviewCount,
		})
	}
}
