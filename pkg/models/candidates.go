package models

import (
	"strconv"
	"strings"
)

// Candidate records are the closed set of shapes the extraction layer
// produces, one per source type. Every field is best-effort: validators
// decide whether a candidate becomes a fact record.

// ProductCandidate is a raw product pulled from one listing container
type ProductCandidate struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	ProductID string  `json:"product_id"`
}

// BookCandidate is a raw book pulled from one listing container.
// Price stays a string until fact assembly because the source renders
// it with a currency symbol. A nil Author means "not yet resolved";
// resolution is deferred to the detail page.
type BookCandidate struct {
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	Author       *string  `json:"author"`
	Categories   []string `json:"categories"`
	Availability string   `json:"availability"`
	Rating       int      `json:"rating"`
	Description  string   `json:"description"`
	BookURL      string   `json:"book_url"`
}

// FilmCandidate is a raw film parsed from the AJAX payload or extracted
// from a listing row
type FilmCandidate struct {
	Title       string   `json:"title"`
	Year        int      `json:"year"`
	Director    string   `json:"director"`
	Actors      []string `json:"actors"`
	Awards      int      `json:"awards"`
	Nominations int      `json:"nominations"`
	BestPicture bool     `json:"best_picture"`
}

// ProductDetail is the richer shape extracted from a product detail page
type ProductDetail struct {
	Description     string              `json:"description"`
	Variants        []VariantDetail     `json:"variants"`
	Reviews         []ReviewDetail      `json:"reviews"`
	SimilarProducts []SimilarItemDetail `json:"similar_products"`
}

// VariantDetail is one variant entry within a ProductDetail
type VariantDetail struct {
	Size          string  `json:"size"`
	Flavor        string  `json:"flavor"`
	PriceModifier float64 `json:"price_modifier"`
}

// ReviewDetail is one review entry within a ProductDetail
type ReviewDetail struct {
	Rating   int    `json:"rating"`
	Text     string `json:"text"`
	Reviewer string `json:"reviewer"`
}

// SimilarItemDetail is one related-item entry within a ProductDetail
type SimilarItemDetail struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
}

// MapString returns the string value for key, or "" when absent or not
// a string-like value.
func MapString(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// MapFloat returns the numeric value for key, tolerating string-encoded
// numbers with currency symbols and thousands separators.
func MapFloat(m map[string]interface{}, key string) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		return ParsePrice(n)
	}
	return 0
}

// MapInt returns the integer value for key, or 0.
func MapInt(m map[string]interface{}, key string) int {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

// MapBool returns the boolean value for key, or false.
func MapBool(m map[string]interface{}, key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

// MapStrings returns the string-slice value for key, dropping non-string
// and empty entries.
func MapStrings(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// ParsePrice extracts a float from a display price such as "£51.77" or
// "$1,299.00". Returns 0 when no digits are present.
func ParsePrice(s string) float64 {
	var b strings.Builder
	for _, r := range strings.ReplaceAll(s, ",", "") {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// ProductCandidateFromMap converts a loosely typed extraction result
// into a ProductCandidate.
func ProductCandidateFromMap(m map[string]interface{}) ProductCandidate {
	return ProductCandidate{
		Name:      MapString(m, "name"),
		Price:     MapFloat(m, "price"),
		Category:  MapString(m, "category"),
		ProductID: MapString(m, "product_id"),
	}
}

// BookCandidateFromMap converts a loosely typed extraction result into
// a BookCandidate.
func BookCandidateFromMap(m map[string]interface{}) BookCandidate {
	c := BookCandidate{
		Title:        MapString(m, "title"),
		Price:        MapString(m, "price"),
		Categories:   MapStrings(m, "categories"),
		Availability: MapString(m, "availability"),
		Rating:       MapInt(m, "rating"),
		Description:  MapString(m, "description"),
		BookURL:      MapString(m, "book_url"),
	}
	if a := MapString(m, "author"); a != "" {
		c.Author = &a
	}
	return c
}

// ProductDetailFromMap converts a loosely typed extraction result into
// a ProductDetail.
func ProductDetailFromMap(m map[string]interface{}) ProductDetail {
	detail := ProductDetail{
		Description: MapString(m, "description"),
	}

	for _, item := range mapObjects(m, "variants") {
		detail.Variants = append(detail.Variants, VariantDetail{
			Size:          MapString(item, "size"),
			Flavor:        MapString(item, "flavor"),
			PriceModifier: MapFloat(item, "price_modifier"),
		})
	}

	for _, item := range mapObjects(m, "reviews") {
		detail.Reviews = append(detail.Reviews, ReviewDetail{
			Rating:   MapInt(item, "rating"),
			Text:     MapString(item, "text"),
			Reviewer: MapString(item, "reviewer"),
		})
	}

	for _, item := range mapObjects(m, "similar_products") {
		detail.SimilarProducts = append(detail.SimilarProducts, SimilarItemDetail{
			ProductID: MapString(item, "product_id"),
			Name:      MapString(item, "name"),
		})
	}

	return detail
}

func mapObjects(m map[string]interface{}, key string) []map[string]interface{} {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []map[string]interface{}
	for _, item := range raw {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

// FilmCandidateFromMap converts a loosely typed extraction result into
// a FilmCandidate.
func FilmCandidateFromMap(m map[string]interface{}) FilmCandidate {
	return FilmCandidate{
		Title:       MapString(m, "title"),
		Year:        MapInt(m, "year"),
		Director:    MapString(m, "director"),
		Actors:      MapStrings(m, "actors"),
		Awards:      MapInt(m, "awards"),
		Nominations: MapInt(m, "nominations"),
		BestPicture: MapBool(m, "best_picture"),
	}
}
