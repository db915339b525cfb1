package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyclestore/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type createOrderRequest struct {
	Items         []createOrderItemRequest `json:"items" binding:"omitempty,dive"`
	AddressID     string                   `json:"addressId"`
	Address       *addressRequest          `json:"address"`
	PaymentMethod string                   `json:"paymentMethod" binding:"required"`
}

// orderLine is the product reference and quantity of one order line before
// pricing.
type orderLine struct {
	ProductID primitive.ObjectID
	Quantity  int
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		var req createOrderRequest
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

		lines, err := orderLines(req.Items, user.Cart)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		address, err := resolveOrderAddress(req, &user)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		items, err := priceOrderLines(ctx, db, lines)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		order, err := models.NewOrder(userID, items, address, req.PaymentMethod, time.Now())
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		order.ID = res.InsertedID.(primitive.ObjectID)

		log.Printf("[ORDER] [INFO] order %s created for user %s total=%.2f", order.ID.Hex(), userID.Hex(), order.TotalAmount)
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// orderLines takes the request items when present and the cart otherwise.
func orderLines(items []createOrderItemRequest, cart []models.CartItem) ([]orderLine, error) {
	if len(items) == 0 {
		lines := make([]orderLine, 0, len(cart))
		for _, item := range cart {
			lines = append(lines, orderLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if len(lines) == 0 {
			return nil, models.ErrEmptyOrder
		}
		return lines, nil
	}

	lines := make([]orderLine, 0, len(items))
	for _, item := range items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, models.Invalidf("invalid productId %q", item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, models.ErrInvalidQuantity
		}
		lines = append(lines, orderLine{ProductID: productID, Quantity: item.Quantity})
	}
	return lines, nil
}

// resolveOrderAddress picks addressId, then an inline address, then the
// user's default address. The result is a copy.
func resolveOrderAddress(req createOrderRequest, user *models.User) (models.Address, error) {
	if req.AddressID != "" {
		address, ok := user.FindAddress(req.AddressID)
		if !ok {
			return models.Address{}, models.ErrAddressNotFound
		}
		return address, nil
	}
	if req.Address != nil {
		return req.Address.toAddress(), nil
	}
	if address, ok := user.DefaultAddress(); ok {
		return address, nil
	}
	return models.Address{}, models.ErrAddressRequired
}

// priceOrderLines snapshots the current name and price of every product.
func priceOrderLines(ctx context.Context, db *mongo.Database, lines []orderLine) ([]models.OrderItem, error) {
	ids := make([]primitive.ObjectID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	products, err := findProductsByIDs(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	return snapshotItems(lines, products)
}

func snapshotItems(lines []orderLine, products map[primitive.ObjectID]models.Product) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, models.Invalidf("product %s not found", line.ProductID.Hex())
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}
	return items, nil
}

/* =========================
   READ
========================= */

// orderView is an order with each item's current product attached.
type orderView struct {
	models.Order
	Products map[string]models.Product `json:"products"`
}

func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondDomainError(c, route, err)
			return
		}

		views, err := populateOrders(ctx, db, orders)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": views})
	}
}

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:orderId"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}
		orderID, ok := parseObjectIDParam(c, route, "orderId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := findUserOrder(ctx, db, userID, orderID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		views, err := populateOrders(ctx, db, []models.Order{order})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": views[0]})
	}
}

func findUserOrder(ctx context.Context, db *mongo.Database, userID, orderID primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, models.ErrOrderNotFound
	}
	return order, err
}

func populateOrders(ctx context.Context, db *mongo.Database, orders []models.Order) ([]orderView, error) {
	ids := make([]primitive.ObjectID, 0)
	for _, order := range orders {
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
	}

	products, err := findProductsByIDs(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	return expandOrders(orders, products), nil
}

func expandOrders(orders []models.Order, products map[primitive.ObjectID]models.Product) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		view := orderView{Order: order, Products: map[string]models.Product{}}
		for _, item := range order.Items {
			if product, ok := products[item.ProductID]; ok {
				view.Products[item.ProductID.Hex()] = product
			}
		}
		views = append(views, view)
	}
	return views
}

/* =========================
   CANCEL / DELETE
========================= */

// CancelOrder guards the write on the status it read, so a concurrent admin
// transition makes the cancel fail instead of being overwritten.
func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /orders/:orderId/cancel"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}
		orderID, ok := parseObjectIDParam(c, route, "orderId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := findUserOrder(ctx, db, userID, orderID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		previous := order.Status
		if err := order.Cancel(time.Now()); err != nil {
			respondDomainError(c, route, err)
			return
		}

		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID, "userId": userID, "status": previous},
			bson.M{"$set": bson.M{"status": order.Status, "updatedAt": order.UpdatedAt}},
		)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondDomainError(c, route, models.ErrStaleWrite)
			return
		}

		log.Println("[ORDER] [INFO] order cancelled:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// DeleteOrder removes the caller's order outright, whatever its status.
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders/:orderId"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}
		orderID, ok := parseObjectIDParam(c, route, "orderId")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID, "userId": userID})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondDomainError(c, route, models.ErrOrderNotFound)
			return
		}

		log.Println("[ORDER] [INFO] order deleted:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
