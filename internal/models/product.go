package models

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeECycle    = "E-cycle"
	TypeCycle     = "Cycle"
	TypePart      = "Part"
	TypeAccessory = "Accessory"

	MinProductYear = 1900
)

var ProductTypes = []string{TypeECycle, TypeCycle, TypePart, TypeAccessory}

func IsProductType(value string) bool {
	for _, t := range ProductTypes {
		if t == value {
			return true
		}
	}
	return false
}

type Dimensions struct {
	Length float64 `bson:"length" json:"length" yaml:"length"`
	Width  float64 `bson:"width" json:"width" yaml:"width"`
	Height float64 `bson:"height" json:"height" yaml:"height"`
}

// Review is embedded in Product and is never edited after it is appended.
type Review struct {
	ID           string    `bson:"id" json:"id"`
	Rating       int       `bson:"rating" json:"rating"`
	Review       string    `bson:"review" json:"review"`
	ReviewerName string    `bson:"reviewerName" json:"reviewerName"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Type             string             `bson:"type" json:"type"`
	Brand            string             `bson:"brand" json:"brand"`
	Model            string             `bson:"model" json:"model"`
	Year             int                `bson:"year" json:"year"`
	Price            float64            `bson:"price" json:"price"`
	ImageURLs        []string           `bson:"imageUrls" json:"imageUrls"`
	Description      string             `bson:"description" json:"description"`
	Categories       StringList         `bson:"categories" json:"categories"`
	Tags             StringList         `bson:"tags" json:"tags"`
	Weight           float64            `bson:"weight" json:"weight"`
	Dimensions       Dimensions         `bson:"dimensions" json:"dimensions"`
	Material         string             `bson:"material" json:"material"`
	Color            string             `bson:"color" json:"color"`
	Size             string             `bson:"size" json:"size"`
	Condition        string             `bson:"condition" json:"condition"`
	Warranty         bool               `bson:"warranty" json:"warranty"`
	WarrantyDuration int                `bson:"warrantyDuration" json:"warrantyDuration"`
	ShippingCost     float64            `bson:"shippingCost" json:"shippingCost"`
	ShippingDuration int                `bson:"shippingDuration" json:"shippingDuration"`
	Reviews          []Review           `bson:"reviews" json:"reviews"`
	AverageRating    float64            `bson:"-" json:"averageRating"`
	ReviewCount      int                `bson:"-" json:"reviewCount"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the catalog constraints that the store schema would
// otherwise enforce.
func (p Product) Validate(now time.Time) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return Invalidf("name is required")
	case !IsProductType(p.Type):
		return Invalidf("type must be one of %s", strings.Join(ProductTypes, ", "))
	case strings.TrimSpace(p.Brand) == "":
		return Invalidf("brand is required")
	case strings.TrimSpace(p.Model) == "":
		return Invalidf("model is required")
	case p.Year < MinProductYear || p.Year > now.Year():
		return Invalidf("year must be between %d and %d", MinProductYear, now.Year())
	case p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0):
		return Invalidf("price must be greater than 0")
	}
	return nil
}

// Finalize fills the derived, non-persisted fields.
func (p *Product) Finalize() {
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
	p.ReviewCount = len(p.Reviews)
	p.AverageRating = 0
	if p.ReviewCount == 0 {
		return
	}

	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.AverageRating = math.Round(float64(sum)/float64(p.ReviewCount)*10) / 10
}

// NewReview validates a review submission. A zero rating counts as missing.
func NewReview(rating int, text, reviewerName string, now time.Time) (Review, error) {
	text = strings.TrimSpace(text)
	if rating == 0 || text == "" {
		return Review{}, ErrReviewIncomplete
	}
	if rating < 1 || rating > 5 {
		return Review{}, ErrInvalidRating
	}
	return Review{
		ID:           newSubID(),
		Rating:       rating,
		Review:       text,
		ReviewerName: reviewerName,
		CreatedAt:    now,
	}, nil
}

func (p *Product) AddReview(r Review) {
	p.Reviews = append(p.Reviews, r)
	p.Finalize()
}
