package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"cyclestore/internal/middleware"
	"cyclestore/internal/models"
)

const requestTimeout = 5 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondDomainError maps model error kinds onto status codes. Anything
// unclassified is a store failure and its detail is only logged.
func respondDomainError(c *gin.Context, route string, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] [ERROR] %v", route, err)
	}
	respondWithError(c, status, route, message)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, err.Error()
	case mongo.IsDuplicateKeyError(err):
		return http.StatusConflict, "duplicate value"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}

// requireUserID aborts with 401 when the guard did not attach a user.
func requireUserID(c *gin.Context, route string) (primitive.ObjectID, bool) {
	id, ok := currentUserID(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
	}
	return id, ok
}

func parseObjectIDParam(c *gin.Context, route, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param(name)))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
