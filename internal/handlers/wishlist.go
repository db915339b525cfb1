package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type wishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func GetWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /wishlist"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		products, err := findProductsByIDs(ctx, db, user.Wishlist)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"wishlist": expandWishlist(user.Wishlist, products)})
	}
}

func AddToWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /wishlist"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		var req wishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if _, err := findProduct(ctx, db, productID); err != nil {
			respondDomainError(c, route, err)
			return
		}

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if user.AddToWishlist(productID) {
			if err := saveUserFields(ctx, db, &user, bson.M{"wishlist": user.Wishlist}); err != nil {
				respondDomainError(c, route, err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"wishlist": user.Wishlist})
	}
}

func RemoveFromWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /wishlist/:productId"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}
		productID, ok := parseObjectIDParam(c, route, "productId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if err := user.RemoveFromWishlist(productID); err != nil {
			respondDomainError(c, route, err)
			return
		}
		if err := saveUserFields(ctx, db, &user, bson.M{"wishlist": user.Wishlist}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
