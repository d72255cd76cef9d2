package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starlift/pkg/models"
)

func populatedStore() *RunStore {
	store := NewRunStore()

	products := NewProductsOutput()
	products.Products = append(products.Products, models.Product{
		ID:           "1",
		Name:         "Widget",
		Price:        9.99,
		CategoryCode: products.Categories.Resolve("Gadgets"),
		LinkID:       "link-1",
		CapturedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	products.Variants = append(products.Variants, models.ProductVariant{
		ID:        "1_VAR_0",
		ProductID: "1",
		Size:      "small",
	})
	store.MergeProducts(products)

	books := NewBooksOutput()
	books.Books = append(books.Books, models.Book{
		ID:         "b-1",
		Title:      "Moby Dick",
		Price:      25.10,
		AuthorCode: books.Authors.Resolve("Herman Melville"),
		Rating:     4,
	})
	books.CategoryBridges = append(books.CategoryBridges, models.BookCategoryBridge{
		BookID:       "b-1",
		CategoryCode: books.Categories.Resolve("Classics"),
	})
	store.MergeBooks(books)

	awardType := "film"
	films := NewFilmsOutput()
	films.Films = append(films.Films, models.Film{
		ID:           "f-1",
		Title:        "Inception",
		Year:         2010,
		AwardCode:    films.Awards.ResolveTyped("Academy Award Winner", &awardType),
		DirectorCode: films.Directors.Resolve("Christopher Nolan"),
	})
	films.AwardBridges = append(films.AwardBridges, models.FilmAwardBridge{
		FilmID:    "f-1",
		AwardCode: "AWD_0001",
		AwardYear: 2010,
	})
	store.MergeFilms(films)

	return store
}

func TestAssembleBuildsAllPopulatedTables(t *testing.T) {
	tables := Assemble(populatedStore())

	for _, name := range []string{
		models.TableCategory,
		models.TableBookCategory,
		models.TableAuthor,
		models.TableDirector,
		models.TableAwardCategory,
		models.TableProduct,
		models.TableBook,
		models.TableFilm,
		models.TableBookCategoryBridge,
		models.TableFilmAwardBridge,
		models.TableProductVariant,
	} {
		assert.Contains(t, tables, name)
	}

	// nothing produced actors, reviews or similar products
	assert.NotContains(t, tables, models.TableActor)
	assert.NotContains(t, tables, models.TableFilmActorBridge)
	assert.NotContains(t, tables, models.TableProductReview)
	assert.NotContains(t, tables, models.TableSimilarProduct)
}

func TestAssembleEmptyStoreProducesNoTables(t *testing.T) {
	assert.Empty(t, Assemble(NewRunStore()))
}

func TestAssembleProductTableShape(t *testing.T) {
	tables := Assemble(populatedStore())

	table := tables[models.TableProduct]
	require.NotNil(t, table)
	assert.Equal(t, []string{"id", "name", "price", "category_code", "description", "link_id", "captured_at"}, table.Columns)

	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, "Widget", row["name"])
	assert.Equal(t, "CAT_0001", row["category_code"])
	assert.Equal(t, "2026-03-01T12:00:00Z", row["captured_at"])
}

func TestAssembleAwardTableCarriesType(t *testing.T) {
	tables := Assemble(populatedStore())

	table := tables[models.TableAwardCategory]
	require.NotNil(t, table)
	assert.Equal(t, []string{"code", "name", "type"}, table.Columns)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "AWD_0001", table.Rows[0]["code"])
	assert.Equal(t, "Academy Award Winner", table.Rows[0]["name"])
	assert.Equal(t, "film", table.Rows[0]["type"])
}

func TestAssembleDimensionRowsKeepFirstSeenOrder(t *testing.T) {
	store := NewRunStore()

	books := NewBooksOutput()
	for _, name := range []string{"Zadie Smith", "Ann Patchett", "Colson Whitehead"} {
		books.Authors.Resolve(name)
	}
	books.Books = append(books.Books, models.Book{ID: "b-1", Title: "x"})
	store.MergeBooks(books)

	table := Assemble(store)[models.TableAuthor]
	require.NotNil(t, table)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Zadie Smith", table.Rows[0]["name"])
	assert.Equal(t, "AUTH_0002", table.Rows[1]["code"])
	assert.Equal(t, "Colson Whitehead", table.Rows[2]["name"])
}

func TestAssembleBridgeRowsMatchSourceCounts(t *testing.T) {
	store := populatedStore()
	tables := Assemble(store)

	bridges := tables[models.TableBookCategoryBridge]
	require.NotNil(t, bridges)
	assert.Len(t, bridges.Rows, len(store.Books.CategoryBridges))

	awards := tables[models.TableFilmAwardBridge]
	require.NotNil(t, awards)
	require.Len(t, awards.Rows, 1)
	assert.Equal(t, 2010, awards.Rows[0]["award_year"])
}
