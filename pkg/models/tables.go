package models

// Canonical table names produced by the table assembler. Downstream
// loaders treat a missing table as "zero rows", never as an error.
const (
	TableCategory           = "Category"
	TableBookCategory       = "BookCategory"
	TableAuthor             = "Author"
	TableDirector           = "Director"
	TableActor              = "Actor"
	TableAwardCategory      = "AwardCategory"
	TableProduct            = "Product"
	TableBook               = "Book"
	TableFilm               = "Film"
	TableBookCategoryBridge = "BookCategoryBridge"
	TableFilmActorBridge    = "FilmActorBridge"
	TableFilmAwardBridge    = "FilmAwardBridge"
	TableProductVariant     = "ProductVariant"
	TableProductReview      = "ProductReview"
	TableSimilarProduct     = "SimilarProduct"
)

// Row is one flattened record of a produced table
type Row map[string]interface{}

// Table is a uniform tabular structure ready for a downstream loader
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// TableSet maps canonical table names to their assembled tables.
// Tables whose backing collection was empty are absent from the set.
type TableSet map[string]*Table

// RowCount returns the number of rows of the named table, with absence
// meaning zero.
func (ts TableSet) RowCount(name string) int {
	t, ok := ts[name]
	if !ok {
		return 0
	}
	return len(t.Rows)
}
