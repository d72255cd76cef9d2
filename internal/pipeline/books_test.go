package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starlift/internal/fetch"
)

const bookListingHTML = `<html><body>
	<article class="product_pod">
		<p class="star-rating Four"></p>
		<h3><a href="catalogue/moby-dick_1/index.html" title="Moby Dick">Moby D...</a></h3>
		<p class="price_color">£25.10</p>
		<p class="instock availability">In stock</p>
	</article>
	<article class="product_pod">
		<p class="star-rating Two"></p>
		<h3><a href="catalogue/emma_2/index.html" title="Emma">Emma</a></h3>
		<p class="price_color">£17.50</p>
		<p class="instock availability">In stock</p>
	</article>
</body></html>`

const mobyDickDetailHTML = `<html><body>
	<ul class="breadcrumb">
		<li><a href="/index.html">Home</a></li>
		<li><a href="/catalogue/category/books_1/index.html">Books</a></li>
		<li><a href="/catalogue/category/books/classics_6/index.html">Classics</a></li>
	</ul>
	<table>
		<tr><th>UPC</th><td>abc</td></tr>
		<tr><th>Author</th><td>Herman Melville</td></tr>
	</table>
	<div id="product_description"></div>
	<p>The saga of Captain Ahab and his obsession.</p>
</body></html>`

const emmaDetailHTML = `<html><body>
	<span itemprop="author">Jane Austen</span>
	<table>
		<tr><th>Category</th><td>Romance</td></tr>
	</table>
</body></html>`

func TestBooksRunResolvesAuthorsAndCategories(t *testing.T) {
	cfg := testConfig(t)
	base := cfg.Sources.BooksBaseURL

	fetcher := newFakeFetcher(map[string]*fetch.Page{
		base + "/index.html":                       htmlPage(base+"/index.html", bookListingHTML),
		base + "/catalogue/moby-dick_1/index.html": htmlPage("", mobyDickDetailHTML),
		base + "/catalogue/emma_2/index.html":      htmlPage("", emmaDetailHTML),
	})

	pool := startTestPool(t, cfg, fetcher)
	source := NewBooksSource(cfg, fetcher, pool, NewStrategySelector(&fakeExtractor{}))

	out, err := source.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Books, 2)

	assert.Equal(t, "Moby Dick", out.Books[0].Title)
	assert.Equal(t, 25.10, out.Books[0].Price)
	assert.Equal(t, 4, out.Books[0].Rating)
	assert.Equal(t, "In stock", out.Books[0].Availability)
	assert.Contains(t, out.Books[0].Description, "Captain Ahab")

	// authors coded in first-seen order
	authors := out.Authors.Entries()
	require.Len(t, authors, 2)
	assert.Equal(t, "AUTH_0001", authors[0].Code)
	assert.Equal(t, "Herman Melville", authors[0].Name)
	assert.Equal(t, "AUTH_0002", authors[1].Code)
	assert.Equal(t, "Jane Austen", authors[1].Name)

	// one category bridge per book category
	require.Len(t, out.CategoryBridges, 2)
	assert.Equal(t, out.Books[0].ID, out.CategoryBridges[0].BookID)
	assert.Equal(t, out.Categories.Resolve("Classics"), out.CategoryBridges[0].CategoryCode)
	assert.Equal(t, out.Categories.Resolve("Romance"), out.CategoryBridges[1].CategoryCode)

	// pagination stopped at the first missing page
	assert.True(t, fetcher.requested(base+"/catalogue/page-2.html"))
}

func TestBooksRunDefaultsWhenDetailUnavailable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.AllowPlaceholders = false
	base := cfg.Sources.BooksBaseURL

	listing := `<html><body>
		<article class="product_pod">
			<h3><a href="catalogue/orphan_9/index.html" title="Orphan Book">Orphan...</a></h3>
			<p class="price_color">£10.00</p>
		</article>
	</body></html>`

	fetcher := newFakeFetcher(map[string]*fetch.Page{
		base + "/index.html": htmlPage(base+"/index.html", listing),
	})

	pool := startTestPool(t, cfg, fetcher)
	source := NewBooksSource(cfg, fetcher, pool, NewStrategySelector(&fakeExtractor{}))

	out, err := source.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Books, 1)

	book := out.Books[0]
	assert.Equal(t, out.Authors.Resolve("Not Specified"), book.AuthorCode)
	assert.Equal(t, "In stock", book.Availability)
	assert.Equal(t, 3, book.Rating, "missing star rating falls back to the midpoint")

	require.Len(t, out.CategoryBridges, 1)
	assert.Equal(t, out.Categories.Resolve("Fiction"), out.CategoryBridges[0].CategoryCode)
}

func TestExtractBookCategories(t *testing.T) {
	breadcrumb := parseDocument(t, mobyDickDetailHTML)
	assert.Equal(t, []string{"Classics"}, extractBookCategories(breadcrumb))

	tableOnly := parseDocument(t, emmaDetailHTML)
	assert.Equal(t, []string{"Romance"}, extractBookCategories(tableOnly))
}
