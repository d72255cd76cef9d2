package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starlift/internal/llm"
)

// fakeExtractor is a scripted structured extraction service
type fakeExtractor struct {
	available bool
	record    map[string]interface{}
	err       error
	calls     int
}

func (f *fakeExtractor) Available() bool { return f.available }

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ llm.Schema) (map[string]interface{}, error) {
	f.calls++
	return f.record, f.err
}

func parseFragment(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("body").Children().First()
}

func TestSelectProductDeterministicSufficient(t *testing.T) {
	service := &fakeExtractor{available: true, record: map[string]interface{}{"name": "FromService"}}
	selector := NewStrategySelector(service)

	container := parseFragment(t, `<article>
		<h3>Widget</h3>
		<div class="price">$9.99</div>
		<span class="category">Gadgets</span>
		<a href="/product/widget-1">view</a>
	</article>`)

	candidate := selector.SelectProduct(context.Background(), container)
	require.NotNil(t, candidate)
	assert.Equal(t, "Widget", candidate.Name)
	assert.Equal(t, 9.99, candidate.Price)
	assert.Equal(t, "Gadgets", candidate.Category)
	assert.Equal(t, "widget-1", candidate.ProductID)
	assert.Zero(t, service.calls, "service must not be consulted when deterministic extraction is sufficient")
}

func TestSelectProductUnavailableServiceNeverRaises(t *testing.T) {
	selector := NewStrategySelector(&fakeExtractor{available: false})

	container := parseFragment(t, `<div><span class="price">$0</span></div>`)
	candidate := selector.SelectProduct(context.Background(), container)

	// Deterministic-only mode: a container with no name yields no
	// record, with no error path.
	assert.Nil(t, candidate)
}

func TestSelectBookMergesServiceFieldsDeterministicWins(t *testing.T) {
	service := &fakeExtractor{available: true, record: map[string]interface{}{
		"title":      "Wrong Title",
		"author":     "Herman Melville",
		"categories": []interface{}{"Classics"},
		"price":      "£999.99",
	}}
	selector := NewStrategySelector(service)

	container := parseFragment(t, `<article class="product_pod">
		<h3><a title="Moby Dick" href="catalogue/moby-dick_1/index.html">Moby D...</a></h3>
		<p class="price_color">£51.77</p>
		<p class="star-rating Four"></p>
	</article>`)

	candidate := selector.SelectBook(context.Background(), container, "https://books.toscrape.com")
	require.NotNil(t, candidate)

	assert.Equal(t, "Moby Dick", candidate.Title, "deterministic title wins")
	assert.Equal(t, "£51.77", candidate.Price, "deterministic price wins")
	require.NotNil(t, candidate.Author, "missing author filled from service")
	assert.Equal(t, "Herman Melville", *candidate.Author)
	assert.Equal(t, []string{"Classics"}, candidate.Categories)
	assert.Equal(t, 1, service.calls)
}

func TestSelectBookSkipsServiceWhenComplete(t *testing.T) {
	service := &fakeExtractor{available: true, record: map[string]interface{}{"author": "X"}}
	selector := NewStrategySelector(service)

	container := parseFragment(t, `<article class="product_pod">
		<h3><a title="Moby Dick" href="catalogue/moby-dick_1/index.html">Moby D...</a></h3>
		<p class="price_color">£51.77</p>
	</article>`)

	// The listing never carries an author, so the service is consulted.
	candidate := selector.SelectBook(context.Background(), container, "https://books.toscrape.com")
	require.NotNil(t, candidate)
	assert.Equal(t, 1, service.calls)
}

func TestExtractProductDetailUnavailableReturnsNil(t *testing.T) {
	selector := NewStrategySelector(&fakeExtractor{available: false})
	assert.Nil(t, selector.ExtractProductDetail(context.Background(), "<html></html>"))
}

func TestExtractAuthorDegradesOnFailure(t *testing.T) {
	selector := NewStrategySelector(&fakeExtractor{available: true, err: assert.AnError})
	assert.Empty(t, selector.ExtractAuthor(context.Background(), "some description"))
}
