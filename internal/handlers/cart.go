package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cyclestore/internal/models"
)

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
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

		lines, err := populateCart(ctx, db, user.Cart)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": lines})
	}
}

func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
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

		item, err := user.AddToCart(productID, quantity)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if err := saveUserFields(ctx, db, &user, bson.M{"cart": user.Cart}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Printf("[CART] [INFO] user %s cart line %s now %d", userID.Hex(), item.ID, item.Quantity)
		c.JSON(http.StatusOK, gin.H{"item": item, "cart": user.Cart})
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/:itemId"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		var req updateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := loadUser(ctx, db, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		item, err := user.UpdateCartQuantity(c.Param("itemId"), req.Quantity)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if err := saveUserFields(ctx, db, &user, bson.M{"cart": user.Cart}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"item": item, "cart": user.Cart})
	}
}

func DeleteCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:itemId"
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

		if err := user.RemoveCartItem(c.Param("itemId")); err != nil {
			respondDomainError(c, route, err)
			return
		}
		if err := saveUserFields(ctx, db, &user, bson.M{"cart": user.Cart}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": user.Cart})
	}
}

func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
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

		user.ClearCart()
		if err := saveUserFields(ctx, db, &user, bson.M{"cart": user.Cart}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"cart": []models.CartItem{}})
	}
}
