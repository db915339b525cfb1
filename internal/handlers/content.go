package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyclestore/internal/models"
)

type blogRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
	Author   string `json:"author" binding:"required"`
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

/* =========================
   BLOGS
========================= */

func GetBlogs(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /blogs"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("blogs").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		blogs := make([]models.BlogPost, 0)
		if err := cursor.All(ctx, &blogs); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, blogs)
	}
}

func CreateBlog(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /blogs"
		defer handlePanic(c, route)

		var req blogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := time.Now()
		blog := models.BlogPost{
			Title:     strings.TrimSpace(req.Title),
			Content:   req.Content,
			ImageURL:  strings.TrimSpace(req.ImageURL),
			Author:    strings.TrimSpace(req.Author),
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("blogs").InsertOne(ctx, blog)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		blog.ID = res.InsertedID.(primitive.ObjectID)

		log.Println("[BLOG] [INFO] blog created:", blog.ID.Hex())
		c.JSON(http.StatusCreated, blog)
	}
}

/* =========================
   CONTACTS
========================= */

func CreateContact(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /contacts"
		defer handlePanic(c, route)

		var req contactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		contact := models.Contact{
			Name:      strings.TrimSpace(req.Name),
			Email:     models.NormalizeEmail(req.Email),
			Subject:   strings.TrimSpace(req.Subject),
			Message:   req.Message,
			CreatedAt: time.Now(),
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("contacts").InsertOne(ctx, contact)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		contact.ID = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, gin.H{"message": "message received", "contact": contact})
	}
}

func GetContacts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/contacts"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("contacts").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		contacts := make([]models.Contact, 0)
		if err := cursor.All(ctx, &contacts); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, contacts)
	}
}
