package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"cyclestore/internal/auth"
	"cyclestore/internal/models"
)

type adminCredentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func AdminSignup(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/signup"
		defer handlePanic(c, route)

		var req adminCredentials
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		admin := models.Admin{
			Email:        models.NormalizeEmail(req.Email),
			PasswordHash: string(hash),
			CreatedAt:    time.Now(),
		}
		res, err := db.Collection("admins").InsertOne(ctx, admin)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondDomainError(c, route, models.ErrEmailTaken)
				return
			}
			respondDomainError(c, route, err)
			return
		}
		admin.ID = res.InsertedID.(primitive.ObjectID)

		token, err := auth.Issue(auth.Principal{Kind: auth.KindAdmin, ID: admin.ID}, jwtSecret, tokenTTL, time.Now())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		log.Println("[ADMIN] [INFO] admin created:", admin.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{
			"admin": gin.H{"id": admin.ID.Hex(), "email": admin.Email},
			"token": token,
		})
	}
}

func AdminLogin(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"
		defer handlePanic(c, route)

		var req adminCredentials
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var admin models.Admin
		err := db.Collection("admins").FindOne(ctx, bson.M{"email": models.NormalizeEmail(req.Email)}).Decode(&admin)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		token, err := auth.Issue(auth.Principal{Kind: auth.KindAdmin, ID: admin.ID}, jwtSecret, tokenTTL, time.Now())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"admin": gin.H{"id": admin.ID.Hex(), "email": admin.Email},
			"token": token,
		})
	}
}
