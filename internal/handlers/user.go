package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"cyclestore/internal/models"
)

type addressRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Pincode     string `json:"pincode" binding:"required"`
	AddressLine string `json:"addressLine" binding:"required"`
	City        string `json:"city" binding:"required"`
	State       string `json:"state" binding:"required"`
	Country     string `json:"country" binding:"required"`
	IsDefault   bool   `json:"isDefault"`
}

func (r addressRequest) toAddress() models.Address {
	return models.Address{
		FullName:    strings.TrimSpace(r.FullName),
		Phone:       strings.TrimSpace(r.Phone),
		Pincode:     strings.TrimSpace(r.Pincode),
		AddressLine: strings.TrimSpace(r.AddressLine),
		City:        strings.TrimSpace(r.City),
		State:       strings.TrimSpace(r.State),
		Country:     strings.TrimSpace(r.Country),
		IsDefault:   r.IsDefault,
	}
}

type addressPatchRequest struct {
	FullName    *string `json:"fullName"`
	Phone       *string `json:"phone"`
	Pincode     *string `json:"pincode"`
	AddressLine *string `json:"addressLine"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Country     *string `json:"country"`
	IsDefault   *bool   `json:"isDefault"`
}

type profileRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	ProfilePicture *string `json:"profilePicture"`
}

type profilePictureRequest struct {
	ProfilePicture string `json:"profilePicture" binding:"required,url"`
}

/* =========================
   PROFILE
========================= */

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/me"
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

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func UpdateMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/me"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		var req profileRequest
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

		user.ApplyProfile(models.ProfilePatch{
			Name:           req.Name,
			Email:          req.Email,
			Phone:          req.Phone,
			ProfilePicture: req.ProfilePicture,
		})

		if err := saveUserFields(ctx, db, &user, bson.M{
			"name":           user.Name,
			"email":          user.Email,
			"phone":          user.Phone,
			"profilePicture": user.ProfilePicture,
		}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[USER] [INFO] profile updated:", user.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func UpdateProfilePicture(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/me/profile-picture"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		var req profilePictureRequest
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

		user.ApplyProfile(models.ProfilePatch{ProfilePicture: &req.ProfilePicture})
		if err := saveUserFields(ctx, db, &user, bson.M{"profilePicture": user.ProfilePicture}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"profilePicture": user.ProfilePicture})
	}
}

/* =========================
   ADDRESSES
========================= */

func GetUserAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/me/addresses"
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

		c.JSON(http.StatusOK, gin.H{"addresses": addressList(user.Addresses)})
	}
}

func CreateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /users/me/addresses"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[ADDRESS] [ERROR] invalid address body:", err)
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

		address := user.AddAddress(req.toAddress())
		if err := saveUserFields(ctx, db, &user, bson.M{"addresses": user.Addresses}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[ADDRESS] [INFO] address created:", address.ID)
		c.JSON(http.StatusCreated, gin.H{"address": address, "addresses": user.Addresses})
	}
}

func UpdateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/me/addresses/:addressId"
		defer handlePanic(c, route)

		userID, ok := requireUserID(c, route)
		if !ok {
			return
		}

		var req addressPatchRequest
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

		address, err := user.UpdateAddress(c.Param("addressId"), models.AddressPatch{
			FullName:    req.FullName,
			Phone:       req.Phone,
			Pincode:     req.Pincode,
			AddressLine: req.AddressLine,
			City:        req.City,
			State:       req.State,
			Country:     req.Country,
			IsDefault:   req.IsDefault,
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		if err := saveUserFields(ctx, db, &user, bson.M{"addresses": user.Addresses}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		log.Println("[ADDRESS] [INFO] address updated:", address.ID)
		c.JSON(http.StatusOK, gin.H{"address": address, "addresses": user.Addresses})
	}
}

func DeleteUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /users/me/addresses/:addressId"
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

		before := len(user.Addresses)
		addresses := user.DeleteAddress(c.Param("addressId"))
		if len(addresses) != before {
			if err := saveUserFields(ctx, db, &user, bson.M{"addresses": user.Addresses}); err != nil {
				respondDomainError(c, route, err)
				return
			}
			log.Println("[ADDRESS] [INFO] address deleted:", c.Param("addressId"))
		}

		c.JSON(http.StatusOK, gin.H{"addresses": addressList(user.Addresses)})
	}
}

func SetDefaultUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/me/addresses/:addressId/default"
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

		if err := user.SetDefaultAddress(c.Param("addressId")); err != nil {
			respondDomainError(c, route, err)
			return
		}
		if err := saveUserFields(ctx, db, &user, bson.M{"addresses": user.Addresses}); err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func addressList(addresses []models.Address) []models.Address {
	if addresses == nil {
		return []models.Address{}
	}
	return addresses
}
