package pipeline

import (
	"strings"

	"starlift/pkg/models"
)

// navDenylist matches names of navigation links that listing-page
// selectors occasionally pick up as products.
var navDenylist = []string{
	"docs", "api", "login", "cart", "testimonials",
	"file download", "graphql", "sitemap", "blog", "github",
}

// IsNavArtifact reports whether a name looks like a navigation link
// rather than a real record.
func IsNavArtifact(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range navDenylist {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// ValidProduct accepts a product candidate with a non-empty name, a
// price strictly greater than zero, and a name that is not a navigation
// artifact. A "unknown" category sentinel is also rejected.
func ValidProduct(c models.ProductCandidate) bool {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return false
	}

	if c.Price <= 0 {
		return false
	}

	if IsNavArtifact(name) {
		return false
	}

	if category := strings.ToLower(strings.TrimSpace(c.Category)); category == "unknown" {
		return false
	}

	return true
}

// ValidBook accepts a book candidate with a non-empty title. A missing
// author is fine, resolution is deferred to the detail page; only the
// explicit "unknown" sentinel is rejected.
func ValidBook(c models.BookCandidate) bool {
	if strings.TrimSpace(c.Title) == "" {
		return false
	}

	if c.Author != nil && strings.EqualFold(strings.TrimSpace(*c.Author), "unknown") {
		return false
	}

	return true
}

// ValidFilm accepts a film candidate with a non-empty, non-sentinel
// title. A missing director is fine; the AJAX payload never carries one.
func ValidFilm(c models.FilmCandidate) bool {
	title := strings.TrimSpace(c.Title)
	if title == "" || strings.EqualFold(title, "unknown") {
		return false
	}

	return true
}
