package catalog

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxResults caps every search response.
const MaxResults = 50

// FallbackFields are scanned by the regex fallback.
var FallbackFields = []string{"name", "brand", "model", "description", "categories", "tags"}

// Filter builds the conjunctive exact/range/tag clause set.
func (p SearchParams) Filter() bson.M {
	filter := bson.M{}
	setIfPresent(filter, "type", p.Type)
	setIfPresent(filter, "brand", p.Brand)
	setIfPresent(filter, "model", p.Model)
	setIfPresent(filter, "color", p.Color)
	setIfPresent(filter, "condition", p.Condition)
	if p.Year != nil {
		filter["year"] = *p.Year
	}
	if price := priceRange(p.MinPrice, p.MaxPrice); price != nil {
		filter["price"] = price
	}
	if len(p.Tags) > 0 {
		filter["tags"] = bson.M{"$in": p.Tags}
	}
	return filter
}

func (p FilterParams) Filter() bson.M {
	filter := bson.M{}
	setIfPresent(filter, "categories", p.Category)
	setIfPresent(filter, "brand", p.Brand)
	if price := priceRange(p.MinPrice, p.MaxPrice); price != nil {
		filter["price"] = price
	}
	return filter
}

// TextQuery is the primary search: the filter plus a $text clause, ranked by
// relevance.
func TextQuery(p SearchParams) (bson.M, *options.FindOptions) {
	filter := p.Filter()
	filter["$text"] = bson.M{"$search": p.Search}

	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}}).
		SetLimit(MaxResults)
	return filter, opts
}

// FallbackQuery matches any search word as a case-insensitive substring of
// any FallbackFields entry, still conjoined with the filter.
func FallbackQuery(p SearchParams) (bson.M, *options.FindOptions) {
	filter := p.Filter()

	pattern := SearchPattern(p.Search)
	or := make([]bson.M, 0, len(FallbackFields))
	for _, field := range FallbackFields {
		or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
	}
	filter["$or"] = or

	return filter, options.Find().SetLimit(MaxResults)
}

// PlainQuery is used when no search text is supplied.
func PlainQuery(p SearchParams) (bson.M, *options.FindOptions) {
	return p.Filter(), options.Find().SetLimit(MaxResults)
}

// SearchPattern splits on whitespace and joins the quoted words as an
// alternation.
func SearchPattern(search string) string {
	words := strings.Fields(search)
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return strings.Join(quoted, "|")
}

func priceRange(minPrice, maxPrice *float64) bson.M {
	if minPrice == nil && maxPrice == nil {
		return nil
	}
	price := bson.M{}
	if minPrice != nil {
		price["$gte"] = *minPrice
	}
	if maxPrice != nil {
		price["$lte"] = *maxPrice
	}
	return price
}

func setIfPresent(filter bson.M, key, value string) {
	if value != "" {
		filter[key] = value
	}
}
