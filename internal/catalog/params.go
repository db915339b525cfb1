package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"cyclestore/internal/models"
)

// SearchParams are the optional inputs of the search endpoint. Nil pointers
// and empty strings mean "not supplied" and add no clause.
type SearchParams struct {
	Type      string
	Brand     string
	Model     string
	Color     string
	Condition string
	Year      *int
	MinPrice  *float64
	MaxPrice  *float64
	Tags      []string
	Search    string
}

// FilterParams are the inputs of the narrower listing endpoint.
type FilterParams struct {
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
}

func ParseSearchParams(q url.Values) (SearchParams, error) {
	p := SearchParams{
		Type:      strings.TrimSpace(q.Get("type")),
		Brand:     strings.TrimSpace(q.Get("brand")),
		Model:     strings.TrimSpace(q.Get("model")),
		Color:     strings.TrimSpace(q.Get("color")),
		Condition: strings.TrimSpace(q.Get("condition")),
		Tags:      splitTags(q.Get("tags")),
		Search:    strings.TrimSpace(q.Get("search")),
	}

	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return SearchParams{}, models.Invalidf("year must be an integer")
		}
		p.Year = &year
	}

	var err error
	if p.MinPrice, p.MaxPrice, err = parsePriceRange(q); err != nil {
		return SearchParams{}, err
	}
	return p, nil
}

func ParseFilterParams(q url.Values) (FilterParams, error) {
	p := FilterParams{
		Category: strings.TrimSpace(q.Get("category")),
		Brand:    strings.TrimSpace(q.Get("brand")),
	}

	var err error
	if p.MinPrice, p.MaxPrice, err = parsePriceRange(q); err != nil {
		return FilterParams{}, err
	}
	return p, nil
}

func parsePriceRange(q url.Values) (*float64, *float64, error) {
	minPrice, err := parsePrice(q.Get("minPrice"), "minPrice")
	if err != nil {
		return nil, nil, err
	}
	maxPrice, err := parsePrice(q.Get("maxPrice"), "maxPrice")
	if err != nil {
		return nil, nil, err
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return nil, nil, models.Invalidf("minPrice must not exceed maxPrice")
	}
	return minPrice, maxPrice, nil
}

// parsePrice rejects anything that is not a finite, non-negative number.
// strconv accepts "NaN" and "Inf", so those are checked explicitly.
func parsePrice(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, models.Invalidf("%s must be a number", name)
	}
	if value < 0 {
		return nil, models.Invalidf("%s must not be negative", name)
	}
	return &value, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := map[string]struct{}{}
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
