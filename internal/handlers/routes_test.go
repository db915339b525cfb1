package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cyclestore/internal/middleware"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// serve runs h against a request without a database; every case here must
// be rejected before the handler touches the store.
func serve(t *testing.T, method, target, body string, h gin.HandlerFunc, params gin.Params, userID *primitive.ObjectID) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	if userID != nil {
		c.Set(middleware.UserIDKey, *userID)
	}

	h(c)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestSearchProductsRejectsMalformedNumbers(t *testing.T) {
	for _, target := range []string{
		"/products/search?year=abc",
		"/products/search?minPrice=NaN",
		"/products/search?minPrice=50&maxPrice=10",
	} {
		w := serve(t, http.MethodGet, target, "", SearchProducts(nil), nil, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, w.Code)
		}
	}

	w := serve(t, http.MethodGet, "/products/filter?maxPrice=cheap", "", FilterProducts(nil), nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("filter: expected 400, got %d", w.Code)
	}
	if msg, _ := errorBody(t, w)["error"].(string); !strings.Contains(msg, "maxPrice") {
		t.Fatalf("expected error to name the parameter, got %q", msg)
	}
}

func TestCreateProductRejectsFutureYear(t *testing.T) {
	body := `{"name":"Volt","type":"E-cycle","brand":"Hero","model":"V1","year":2999,"price":50000}`
	w := serve(t, http.MethodPost, "/admin/products", body, CreateProduct(nil), nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	details, _ := errorBody(t, w)["details"].([]any)
	if len(details) != 1 || details[0] != "year must not be in the future" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestCreateProductRejectsUnknownType(t *testing.T) {
	body := `{"name":"Volt","type":"Scooter","brand":"Hero","model":"V1","year":2020,"price":50000}`
	w := serve(t, http.MethodPost, "/admin/products", body, CreateProduct(nil), nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateProductNamesPriceConstraint(t *testing.T) {
	body := `{"name":"Volt","type":"Cycle","brand":"Hero","model":"V1","year":2020,"price":-5}`
	w := serve(t, http.MethodPost, "/admin/products", body, CreateProduct(nil), nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	details, _ := errorBody(t, w)["details"].([]any)
	if len(details) != 1 || details[0] != "price must be greater than 0" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	params := gin.Params{{Key: "orderId", Value: primitive.NewObjectID().Hex()}}
	w := serve(t, http.MethodPut, "/admin/orders/x", `{"status":"Lost"}`, UpdateOrderStatus(nil), params, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if errorBody(t, w)["error"] != "invalid order status" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestUserRoutesRequireUserInContext(t *testing.T) {
	w := serve(t, http.MethodGet, "/cart", "", GetCart(nil), nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestMalformedIdentifiers(t *testing.T) {
	userID := primitive.NewObjectID()

	w := serve(t, http.MethodPost, "/cart", `{"productId":"xyz","quantity":1}`, AddToCart(nil), nil, &userID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("cart: expected 400, got %d", w.Code)
	}

	params := gin.Params{{Key: "productId", Value: "xyz"}}
	w = serve(t, http.MethodDelete, "/wishlist/xyz", "", RemoveFromWishlist(nil), params, &userID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wishlist: expected 400, got %d", w.Code)
	}

	params = gin.Params{{Key: "orderId", Value: "xyz"}}
	w = serve(t, http.MethodPut, "/orders/xyz/cancel", "", CancelOrder(nil), params, &userID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("cancel: expected 400, got %d", w.Code)
	}
}

func TestReviewValidationHappensBeforeLookup(t *testing.T) {
	userID := primitive.NewObjectID()
	params := gin.Params{{Key: "id", Value: primitive.NewObjectID().Hex()}}

	w := serve(t, http.MethodPost, "/products/x/ratings", `{"rating":6,"review":"great"}`, AddProductReview(nil), params, &userID)
	if w.Code != http.StatusBadRequest || errorBody(t, w)["error"] != "rating must be between 1 and 5" {
		t.Fatalf("expected rating error, got %d %s", w.Code, w.Body.String())
	}

	w = serve(t, http.MethodPost, "/products/x/ratings", `{"rating":4}`, AddProductReview(nil), params, &userID)
	if w.Code != http.StatusBadRequest || errorBody(t, w)["error"] != "rating and review are required" {
		t.Fatalf("expected incomplete review error, got %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	w := serve(t, http.MethodPost, "/register", `{"email":"not-an-email","password":"123"}`, Register(nil, "secret", 0), nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	details, _ := errorBody(t, w)["details"].([]any)
	if len(details) != 3 {
		t.Fatalf("expected name, email and password errors, got %v", details)
	}
}

func TestHealth(t *testing.T) {
	w := serve(t, http.MethodGet, "/healthz", "", Health, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
