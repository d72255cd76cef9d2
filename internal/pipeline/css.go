package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"starlift/pkg/models"
	"starlift/pkg/utils"
)

// Deterministic field extraction. Selectors are tried broadest-first
// and fail soft: a container that yields nothing returns nil so the
// strategy selector can escalate to structured extraction.

var productHrefPattern = regexp.MustCompile(`/product/([^/?#]+)`)

// ProductContainers finds product listing containers in a page,
// filtering out navigation, header and footer fragments.
func ProductContainers(doc *goquery.Document) []*goquery.Selection {
	containers := selectionList(doc.Find("article"))
	if len(containers) == 0 {
		containers = selectionList(doc.Find(".product, [class*='product']"))
	}

	var filtered []*goquery.Selection
	for _, container := range containers {
		if container.ParentsFiltered("nav, header, footer").Length() > 0 {
			continue
		}

		if container.Find("a[href*='/product/']").Length() == 0 {
			continue
		}

		text := strings.ToLower(container.Text())
		if len(strings.TrimSpace(text)) < 20 && IsNavArtifact(text) {
			continue
		}

		filtered = append(filtered, container)
	}

	return filtered
}

// ExtractProductCandidate pulls a product candidate out of one listing
// container. Returns nil when not even a name is present.
func ExtractProductCandidate(container *goquery.Selection) *models.ProductCandidate {
	name := firstText(container, "h3, h2, .name, [class*='name'], a")
	if name == "" {
		return nil
	}

	price := models.ParsePrice(firstText(container, ".price, [class*='price'], [class*='cost']"))

	category := firstText(container, ".category, [class*='category'], .tag, [class*='tag']")
	if strings.EqualFold(category, "unknown") {
		category = ""
	}

	productID := ""
	if href, ok := container.Find("a[href*='/product/']").First().Attr("href"); ok {
		if m := productHrefPattern.FindStringSubmatch(href); m != nil {
			productID = m[1]
		}
	}
	if productID == "" {
		productID = container.AttrOr("data-id", container.AttrOr("data-product-id", utils.NewRecordID()))
	}

	return &models.ProductCandidate{
		Name:      name,
		Price:     price,
		Category:  category,
		ProductID: productID,
	}
}

// BookContainers finds book listing containers in a catalogue page
func BookContainers(doc *goquery.Document) []*goquery.Selection {
	containers := selectionList(doc.Find("article.product_pod"))
	if len(containers) == 0 {
		containers = selectionList(doc.Find("article, .product_pod"))
	}
	if len(containers) == 0 {
		containers = selectionList(doc.Find(".product, [class*='product']"))
	}
	return containers
}

// ExtractBookCandidate pulls a book candidate out of one listing
// container. The author is never on the listing page; it stays nil for
// the detail page or structured extraction to fill.
func ExtractBookCandidate(container *goquery.Selection, baseURL string) *models.BookCandidate {
	titleLink := container.Find("h3 a, a[title]").First()
	title := strings.TrimSpace(titleLink.AttrOr("title", ""))
	if title == "" {
		title = firstText(container, "h3 a, h3, .title")
	}
	if title == "" {
		return nil
	}

	price := firstText(container, ".price_color, .price, [class*='price']")

	bookURL := ""
	if href, ok := container.Find("h3 a, a[href*='catalogue']").First().Attr("href"); ok {
		bookURL = absoluteURL(baseURL, href)
	}

	availability := firstText(container, ".availability, [class*='availability'], .instock")
	if availability == "" {
		availability = "In stock"
	}

	rating := 3
	if classes, ok := container.Find(".star-rating, [class*='star']").First().Attr("class"); ok {
		rating = ratingFromClasses(classes)
	}

	return &models.BookCandidate{
		Title:        title,
		Price:        price,
		Availability: availability,
		Rating:       rating,
		BookURL:      bookURL,
	}
}

// FilmRows finds film rows in the rendered listing table
func FilmRows(doc *goquery.Document) []*goquery.Selection {
	rows := selectionList(doc.Find("tr.film"))
	if len(rows) == 0 {
		rows = selectionList(doc.Find("table tbody tr, [class*='film']"))
	}
	return rows
}

// ratingFromClasses maps a star-rating class attribute such as
// "star-rating Three" to a numeric rating, defaulting to 3.
func ratingFromClasses(classes string) int {
	for _, word := range []struct {
		marker string
		value  int
	}{
		{"One", 1}, {"Two", 2}, {"Three", 3}, {"Four", 4}, {"Five", 5},
		{"1", 1}, {"2", 2}, {"3", 3}, {"4", 4}, {"5", 5},
	} {
		if strings.Contains(classes, word.marker) {
			return word.value
		}
	}
	return 3
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

func selectionList(s *goquery.Selection) []*goquery.Selection {
	var out []*goquery.Selection
	s.Each(func(i int, sel *goquery.Selection) {
		out = append(out, sel)
	})
	return out
}

func absoluteURL(baseURL, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(baseURL, "/") + href
	}
	if !strings.Contains(href, "catalogue/") {
		href = "catalogue/" + href
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + href
}
