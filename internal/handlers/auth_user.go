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

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /register"
		defer handlePanic(c, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		email := models.NormalizeEmail(req.Email)
		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if count > 0 {
			respondDomainError(c, route, models.ErrEmailTaken)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] password hash failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		user := models.NewUser(req.Name, email, string(hash), time.Now())
		user.Phone = req.Phone

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondDomainError(c, route, models.ErrEmailTaken)
				return
			}
			respondDomainError(c, route, err)
			return
		}
		user.ID = res.InsertedID.(primitive.ObjectID)

		token, err := issueUserToken(c, db, &user, jwtSecret, tokenTTL)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] user registered:", user.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
	}
}

func Login(db *mongo.Database, jwtSecret string, tokenTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"email": models.NormalizeEmail(req.Email)}).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		token, err := issueUserToken(c, db, &user, jwtSecret, tokenTTL)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

// issueUserToken signs a user token and stores the latest one on the user.
func issueUserToken(c *gin.Context, db *mongo.Database, user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token, err := auth.Issue(auth.Principal{Kind: auth.KindUser, ID: user.ID}, secret, ttl, now)
	if err != nil {
		return "", err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
		"$set": bson.M{"token": token},
	}); err != nil {
		return "", err
	}
	user.Token = token
	return token, nil
}
