package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyclestore/internal/models"
)

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// adminOrder is an order joined with its owner's name.
type adminOrder struct {
	models.Order `bson:",inline"`
	UserName     string `bson:"userName" json:"userName"`
	UserEmail    string `bson:"userEmail" json:"userEmail"`
}

// allOrdersPipeline joins the owner from users, newest order first.
func allOrdersPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "userName", Value: bson.D{{Key: "$ifNull", Value: bson.A{bson.D{{Key: "$first", Value: "$owner.name"}}, ""}}}},
			{Key: "userEmail", Value: bson.D{{Key: "$ifNull", Value: bson.A{bson.D{{Key: "$first", Value: "$owner.email"}}, ""}}}},
		}}},
		{{Key: "$unset", Value: "owner"}},
	}
}

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/orders"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		cursor, err := db.Collection("orders").Aggregate(ctx, allOrdersPipeline())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		orders := make([]adminOrder, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// UpdateOrderStatus is the administrative override: any valid status may be
// set from any current status.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/orders/:orderId"
		defer handlePanic(c, route)

		orderID, ok := parseObjectIDParam(c, route, "orderId")
		if !ok {
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOneAndUpdate(ctx,
			bson.M{"_id": orderID},
			bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&order)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondDomainError(c, route, models.ErrOrderNotFound)
			return
		}
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Printf("[ORDER] [INFO] order %s set to %s", orderID.Hex(), status)
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
