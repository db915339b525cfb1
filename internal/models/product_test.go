package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

func validProduct() Product {
	return Product{
		Name:  "Trail 500",
		Type:  TypeCycle,
		Brand: "Hercules",
		Model: "T500",
		Year:  2022,
		Price: 18999,
	}
}

func TestProductValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := validProduct().Validate(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]func(p *Product){
		"bad type":    func(p *Product) { p.Type = "Scooter" },
		"future year": func(p *Product) { p.Year = 2025 },
		"old year":    func(p *Product) { p.Year = 1899 },
		"zero price":  func(p *Product) { p.Price = 0 },
		"no brand":    func(p *Product) { p.Brand = " " },
	}
	for name, mutate := range cases {
		p := validProduct()
		mutate(&p)
		if err := p.Validate(now); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestNewReviewValidation(t *testing.T) {
	if _, err := NewReview(0, "great", "Asha", time.Now()); !errors.Is(err, ErrReviewIncomplete) {
		t.Fatalf("expected incomplete review for missing rating, got %v", err)
	}
	if _, err := NewReview(4, "   ", "Asha", time.Now()); !errors.Is(err, ErrReviewIncomplete) {
		t.Fatalf("expected incomplete review for blank text, got %v", err)
	}
	for _, rating := range []int{-1, 6} {
		if _, err := NewReview(rating, "ok", "Asha", time.Now()); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: expected invalid rating, got %v", rating, err)
		}
	}
	for _, rating := range []int{1, 5} {
		r, err := NewReview(rating, "ok", "Asha", time.Now())
		if err != nil {
			t.Fatalf("rating %d: unexpected error %v", rating, err)
		}
		if r.ReviewerName != "Asha" || r.ID == "" {
			t.Fatalf("unexpected review %+v", r)
		}
	}
}

func TestAddReviewUpdatesAverage(t *testing.T) {
	p := validProduct()
	p.Finalize()
	if p.ReviewCount != 0 || p.AverageRating != 0 || p.Reviews == nil {
		t.Fatalf("unexpected derived fields %+v", p)
	}

	r1, _ := NewReview(5, "fast", "A", time.Now())
	r2, _ := NewReview(2, "squeaky", "B", time.Now())
	p.AddReview(r1)
	p.AddReview(r2)

	if p.ReviewCount != 2 || p.AverageRating != 3.5 {
		t.Fatalf("expected 2 reviews averaging 3.5, got %d / %v", p.ReviewCount, p.AverageRating)
	}
}

func TestStringListDecodesLegacyString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"name": "Bell", "tags": "accessory", "categories": []string{"Bells", "Safety"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var p Product
	if err := bson.Unmarshal(raw, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "accessory" {
		t.Fatalf("expected single tag from string, got %v", p.Tags)
	}
	if len(p.Categories) != 2 || p.Categories[1] != "Safety" {
		t.Fatalf("unexpected categories %v", p.Categories)
	}
}

func TestStringListJSONAndYAML(t *testing.T) {
	var req struct {
		Tags       StringList `json:"tags" yaml:"tags"`
		Categories StringList `json:"categories" yaml:"categories"`
	}
	if err := json.Unmarshal([]byte(`{"tags":"road, carbon ,","categories":["Bikes"]}`), &req); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(req.Tags) != 2 || req.Tags[1] != "carbon" {
		t.Fatalf("unexpected tags %v", req.Tags)
	}
	if len(req.Categories) != 1 {
		t.Fatalf("unexpected categories %v", req.Categories)
	}

	if err := yaml.Unmarshal([]byte("tags: kids\ncategories: [A, B]\n"), &req); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if len(req.Tags) != 1 || req.Tags[0] != "kids" || len(req.Categories) != 2 {
		t.Fatalf("unexpected yaml decode tags=%v categories=%v", req.Tags, req.Categories)
	}

	out, err := json.Marshal(struct{ Tags StringList }{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"Tags":[]}` {
		t.Fatalf("nil list should marshal as [], got %s", out)
	}
}
