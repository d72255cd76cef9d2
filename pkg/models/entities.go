package models

import "time"

// DimensionEntry is a single row of a dimension table: a generated
// surrogate code paired with the natural-language name it stands for.
// Type is only populated for award categories.
type DimensionEntry struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Type *string `json:"type,omitempty"`
}

// Product represents one accepted product fact record
type Product struct {
	ID           string    `json:"id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Price        float64   `json:"price" validate:"gt=0"`
	CategoryCode string    `json:"category_code" validate:"required"`
	Description  string    `json:"description"`
	LinkID       string    `json:"link_id"`
	CapturedAt   time.Time `json:"captured_at"`
}

// Book represents one accepted book fact record
type Book struct {
	ID           string    `json:"id" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Price        float64   `json:"price"`
	AuthorCode   string    `json:"author_code" validate:"required"`
	Availability string    `json:"availability"`
	Rating       int       `json:"rating" validate:"gte=1,lte=5"`
	Description  string    `json:"description"`
	LinkID       string    `json:"link_id"`
	CapturedAt   time.Time `json:"captured_at"`
}

// Film represents one accepted film fact record
type Film struct {
	ID           string    `json:"id" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Year         int       `json:"year" validate:"gt=0"`
	AwardCode    string    `json:"award_code" validate:"required"`
	DirectorCode string    `json:"director_code" validate:"required"`
	CapturedAt   time.Time `json:"captured_at"`
}

// BookCategoryBridge links one book to one of its categories
type BookCategoryBridge struct {
	BookID       string `json:"book_id"`
	CategoryCode string `json:"category_code"`
}

// FilmActorBridge links one film to one credited actor
type FilmActorBridge struct {
	FilmID    string  `json:"film_id"`
	ActorCode string  `json:"actor_code"`
	Role      *string `json:"role,omitempty"`
}

// FilmAwardBridge links one film to an award category for a given year
type FilmAwardBridge struct {
	FilmID    string `json:"film_id"`
	AwardCode string `json:"award_code"`
	AwardYear int    `json:"award_year"`
}

// ProductVariant is a detail sub-record discovered on a product detail page
type ProductVariant struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	Size          string  `json:"size"`
	Flavor        string  `json:"flavor"`
	PriceModifier float64 `json:"price_modifier"`
}

// ProductReview is a customer review discovered on a product detail page
type ProductReview struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"product_id"`
	Rating     int        `json:"rating"`
	Text       string     `json:"text"`
	Reviewer   string     `json:"reviewer"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// SimilarProduct is a related-item pairing discovered on a product detail page
type SimilarProduct struct {
	ID               string   `json:"id"`
	ProductID        string   `json:"product_id"`
	SimilarProductID string   `json:"similar_product_id"`
	Score            *float64 `json:"score,omitempty"`
}
