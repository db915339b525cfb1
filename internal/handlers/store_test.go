package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"cyclestore/internal/middleware"
	"cyclestore/internal/models"
)

func mockDB(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func updateResponse(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func TestSaveUserFieldsReportsStaleWrite(t *testing.T) {
	mt := mockDB(t)

	mt.Run("stale", func(mt *mtest.T) {
		user := models.NewUser("Asha", "asha@example.com", "hash", fixedNow)
		user.ID = primitive.NewObjectID()
		user.Version = 4

		mt.AddMockResponses(updateResponse(0))

		err := saveUserFields(context.Background(), mt.DB, &user, bson.M{"cart": user.Cart})
		if !errors.Is(err, models.ErrStaleWrite) {
			mt.Fatalf("expected stale write, got %v", err)
		}
		if user.Version != 4 {
			mt.Fatalf("version must not move on a lost race, got %d", user.Version)
		}
		if status, _ := statusForError(err); status != http.StatusConflict {
			mt.Fatalf("expected 409, got %d", status)
		}
	})

	mt.Run("applied", func(mt *mtest.T) {
		user := models.NewUser("Asha", "asha@example.com", "hash", fixedNow)
		user.ID = primitive.NewObjectID()

		mt.AddMockResponses(updateResponse(1))

		if err := saveUserFields(context.Background(), mt.DB, &user, bson.M{"cart": user.Cart}); err != nil {
			mt.Fatalf("save: %v", err)
		}
		if user.Version != 1 {
			mt.Fatalf("expected version 1, got %d", user.Version)
		}
	})
}

func orderDocument(t *testing.T, order models.Order) bson.D {
	t.Helper()
	raw, err := bson.Marshal(order)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}
	return doc
}

func cancelRequest(mt *mtest.T, userID, orderID primitive.ObjectID) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/orders/"+orderID.Hex()+"/cancel", nil)
	c.Params = gin.Params{{Key: "orderId", Value: orderID.Hex()}}
	c.Set(middleware.UserIDKey, userID)

	CancelOrder(mt.DB)(c)
	return w
}

func TestCancelOrderConcurrentTransition(t *testing.T) {
	mt := mockDB(t)

	userID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()
	pending := models.Order{
		ID:            orderID,
		UserID:        userID,
		Items:         []models.OrderItem{{ProductID: primitive.NewObjectID(), Name: "Bell", Quantity: 1, Price: 249}},
		TotalAmount:   249,
		Status:        models.StatusPending,
		PaymentMethod: "cod",
		CreatedAt:     fixedNow,
		UpdatedAt:     fixedNow,
	}

	mt.Run("status changed underneath", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".orders"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, orderDocument(mt.T, pending)),
			updateResponse(0),
		)

		w := cancelRequest(mt, userID, orderID)
		if w.Code != http.StatusConflict {
			mt.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
		if errorBody(mt.T, w)["error"] != "concurrent update, retry" {
			mt.Fatalf("unexpected body %s", w.Body.String())
		}
	})

	mt.Run("pending order cancelled", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".orders"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, orderDocument(mt.T, pending)),
			updateResponse(1),
		)

		w := cancelRequest(mt, userID, orderID)
		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	mt.Run("already shipped", func(mt *mtest.T) {
		shipped := pending
		shipped.Status = models.StatusShipped
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mt.DB.Name()+".orders", mtest.FirstBatch, orderDocument(mt.T, shipped)),
		)

		w := cancelRequest(mt, userID, orderID)
		if w.Code != http.StatusBadRequest || errorBody(mt.T, w)["error"] != "order cannot be cancelled" {
			mt.Fatalf("expected 400 not cancellable, got %d: %s", w.Code, w.Body.String())
		}
	})
}
