package main

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"cyclestore/internal/config"
	"cyclestore/internal/handlers"
	"cyclestore/internal/middleware"
)

func newRouter(db *mongo.Database, cfg config.Config, resolver middleware.PrincipalResolver) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS(cfg.CORSOrigins))

	r.GET("/healthz", handlers.Health)
	r.GET("/readyz", handlers.Ready(db))

	r.POST("/register", handlers.Register(db, cfg.JWTSecret, cfg.TokenTTL))
	r.POST("/login", handlers.Login(db, cfg.JWTSecret, cfg.TokenTTL))
	r.POST("/admin/signup", handlers.AdminSignup(db, cfg.JWTSecret, cfg.TokenTTL))
	r.POST("/admin/login", handlers.AdminLogin(db, cfg.JWTSecret, cfg.TokenTTL))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/search", handlers.SearchProducts(db))
	r.GET("/products/filter", handlers.FilterProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.GET("/products/:id/ratings", handlers.GetProductReviews(db))

	r.GET("/blogs", handlers.GetBlogs(db))
	r.POST("/blogs", handlers.CreateBlog(db))
	r.POST("/contacts", handlers.CreateContact(db))

	userAuth := middleware.UserAuth(cfg.JWTSecret, resolver)

	r.POST("/products/:id/ratings", userAuth, handlers.AddProductReview(db))

	users := r.Group("/users/me")
	users.Use(userAuth)
	{
		users.GET("", handlers.GetMe(db))
		users.PUT("", handlers.UpdateMe(db))
		users.PUT("/profile-picture", handlers.UpdateProfilePicture(db))
		users.GET("/addresses", handlers.GetUserAddresses(db))
		users.POST("/addresses", handlers.CreateUserAddress(db))
		users.PUT("/addresses/:addressId", handlers.UpdateUserAddress(db))
		users.DELETE("/addresses/:addressId", handlers.DeleteUserAddress(db))
		users.PUT("/addresses/:addressId/default", handlers.SetDefaultUserAddress(db))
	}

	cart := r.Group("/cart")
	cart.Use(userAuth)
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("", handlers.AddToCart(db))
		cart.DELETE("", handlers.ClearCart(db))
		cart.PUT("/:itemId", handlers.UpdateCartItem(db))
		cart.DELETE("/:itemId", handlers.DeleteCartItem(db))
	}

	wishlist := r.Group("/wishlist")
	wishlist.Use(userAuth)
	{
		wishlist.GET("", handlers.GetWishlist(db))
		wishlist.POST("", handlers.AddToWishlist(db))
		wishlist.DELETE("/:productId", handlers.RemoveFromWishlist(db))
	}

	orders := r.Group("/orders")
	orders.Use(userAuth)
	{
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("", handlers.GetOrders(db))
		orders.GET("/:orderId", handlers.GetOrder(db))
		orders.PUT("/:orderId/cancel", handlers.CancelOrder(db))
		orders.DELETE("/:orderId", handlers.DeleteOrder(db))
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret, resolver))
	{
		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.PUT("/orders/:orderId", handlers.UpdateOrderStatus(db))
		admin.GET("/contacts", handlers.GetContacts(db))

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))
	}

	return r
}
