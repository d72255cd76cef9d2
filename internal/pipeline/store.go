package pipeline

import "starlift/pkg/models"

// ProductsOutput is everything the products source accumulates in one run
type ProductsOutput struct {
	Products   []models.Product
	Categories *Dimension
	Variants   []models.ProductVariant
	Reviews    []models.ProductReview
	Similar    []models.SimilarProduct
}

// NewProductsOutput creates an empty products accumulator
func NewProductsOutput() *ProductsOutput {
	return &ProductsOutput{Categories: NewDimension("CAT")}
}

// BooksOutput is everything the books source accumulates in one run
type BooksOutput struct {
	Books           []models.Book
	Authors         *Dimension
	Categories      *Dimension
	CategoryBridges []models.BookCategoryBridge
}

// NewBooksOutput creates an empty books accumulator
func NewBooksOutput() *BooksOutput {
	return &BooksOutput{
		Authors:    NewDimension("AUTH"),
		Categories: NewDimension("BK_CAT"),
	}
}

// FilmsOutput is everything the films source accumulates in one run
type FilmsOutput struct {
	Films        []models.Film
	Directors    *Dimension
	Actors       *Dimension
	Awards       *Dimension
	ActorBridges []models.FilmActorBridge
	AwardBridges []models.FilmAwardBridge
}

// NewFilmsOutput creates an empty films accumulator
func NewFilmsOutput() *FilmsOutput {
	return &FilmsOutput{
		Directors: NewDimension("DIR"),
		Actors:    NewDimension("PERF"),
		Awards:    NewDimension("AWD"),
	}
}

// RunStore is the run-scoped entity aggregate: every fact, dimension,
// bridge and detail collection of one orchestrator run. Each source
// pipeline builds its own output in isolation; the orchestrator merges
// only successful outputs here, so a failed source leaves the store
// untouched for the others.
type RunStore struct {
	Products *ProductsOutput
	Books    *BooksOutput
	Films    *FilmsOutput
}

// NewRunStore creates an empty run store
func NewRunStore() *RunStore {
	return &RunStore{
		Products: NewProductsOutput(),
		Books:    NewBooksOutput(),
		Films:    NewFilmsOutput(),
	}
}

// MergeProducts replaces the products section with a completed output
func (rs *RunStore) MergeProducts(out *ProductsOutput) {
	if out != nil {
		rs.Products = out
	}
}

// MergeBooks replaces the books section with a completed output
func (rs *RunStore) MergeBooks(out *BooksOutput) {
	if out != nil {
		rs.Books = out
	}
}

// MergeFilms replaces the films section with a completed output
func (rs *RunStore) MergeFilms(out *FilmsOutput) {
	if out != nil {
		rs.Films = out
	}
}
