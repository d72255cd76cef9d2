package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLCleaner strips markup clutter before a fragment is handed to the
// structured extraction service, so prompt tokens are spent on content.
type HTMLCleaner struct {
	removeTags []string
}

// NewHTMLCleaner creates a new HTML cleaner instance
func NewHTMLCleaner() *HTMLCleaner {
	return &HTMLCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"svg", "path", "g", "defs", "use", "symbol",
			"meta", "link", "base",
		},
	}
}

// ExtractRecordContent pulls the text likely to describe the record out
// of a document, preserving enough structure for the extraction service
// to find field values.
func (hc *HTMLCleaner) ExtractRecordContent(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range hc.removeTags {
		doc.Find(tag).Remove()
	}

	recordSelectors := []string{
		"article", ".product", ".product_pod", ".product_main",
		"[class*='product']", "[class*='item']", "tr.film", "[class*='film']",
		"main", "[role='main']", ".content", ".description",
	}

	var contentParts []string
	seen := map[string]bool{}

	for _, selector := range recordSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > 20 && !seen[text] {
				seen[text] = true
				contentParts = append(contentParts, text)
			}
		})
	}

	if len(contentParts) == 0 {
		if bodyText := strings.TrimSpace(doc.Find("body").Text()); bodyText != "" {
			contentParts = append(contentParts, bodyText)
		}
	}

	return cleanExtractedText(strings.Join(contentParts, "\n\n")), nil
}

func cleanExtractedText(text string) string {
	whitespaceRegex := regexp.MustCompile(`[ \t]+`)
	text = whitespaceRegex.ReplaceAllString(text, " ")

	newlineRegex := regexp.MustCompile(`\n{3,}`)
	text = newlineRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
