package pipeline

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"starlift/internal/llm"
	"starlift/internal/logging"
	"starlift/pkg/models"
)

// Extractor is the structured extraction service boundary. Available
// reports whether extraction can be attempted at all; an unavailable
// service puts the selector into deterministic-only mode.
type Extractor interface {
	Available() bool
	Extract(ctx context.Context, fragment string, schema llm.Schema) (map[string]interface{}, error)
}

// StrategySelector decides, per container, between the deterministic
// extractor and the structured extraction service. The deterministic
// pass always runs first; the service is consulted only when mandatory
// fields are missing, and deterministic values win in the merge.
type StrategySelector struct {
	service Extractor
	logger  logging.Logger
}

// NewStrategySelector creates a selector over the given extraction service
func NewStrategySelector(service Extractor) *StrategySelector {
	return &StrategySelector{
		service: service,
		logger:  logging.GetGlobalLogger(),
	}
}

// SelectProduct extracts a product candidate from one listing
// container, or nil when no record is present.
func (ss *StrategySelector) SelectProduct(ctx context.Context, container *goquery.Selection) *models.ProductCandidate {
	candidate := ExtractProductCandidate(container)
	if candidate != nil && candidate.Name != "" {
		return candidate
	}

	record := ss.extractFragment(ctx, container, productSchema)
	if record == nil {
		return candidate
	}

	extracted := models.ProductCandidateFromMap(record)
	if candidate == nil {
		return &extracted
	}

	merged := mergeProductCandidates(*candidate, extracted)
	return &merged
}

// SelectBook extracts a book candidate from one listing container. The
// service is also consulted when the deterministic pass found no
// author, since the listing page never carries one.
func (ss *StrategySelector) SelectBook(ctx context.Context, container *goquery.Selection, baseURL string) *models.BookCandidate {
	candidate := ExtractBookCandidate(container, baseURL)
	if candidate != nil && candidate.Title != "" && candidate.Author != nil {
		return candidate
	}

	record := ss.extractFragment(ctx, container, bookSchema)
	if record == nil {
		return candidate
	}

	extracted := models.BookCandidateFromMap(record)
	if candidate == nil {
		return &extracted
	}

	merged := mergeBookCandidates(*candidate, extracted)
	return &merged
}

// ExtractFilms extracts film candidates from listing rows via the
// structured extraction service. Used only when the AJAX payload could
// not be parsed.
func (ss *StrategySelector) ExtractFilms(ctx context.Context, rows []*goquery.Selection) []models.FilmCandidate {
	var films []models.FilmCandidate
	for _, row := range rows {
		record := ss.extractFragment(ctx, row, filmSchema)
		if record == nil {
			continue
		}
		films = append(films, models.FilmCandidateFromMap(record))
	}
	return films
}

// ExtractFilmCredits extracts director and actors per film title from
// listing rows, keyed by title.
func (ss *StrategySelector) ExtractFilmCredits(ctx context.Context, rows []*goquery.Selection) map[string]models.FilmCandidate {
	credits := map[string]models.FilmCandidate{}
	for _, row := range rows {
		record := ss.extractFragment(ctx, row, filmEnrichmentSchema)
		if record == nil {
			continue
		}
		candidate := models.FilmCandidateFromMap(record)
		if candidate.Title != "" {
			credits[candidate.Title] = candidate
		}
	}
	return credits
}

// ExtractAuthor asks the service for an author name given detail-page
// text. Returns "" when unavailable or nothing was found.
func (ss *StrategySelector) ExtractAuthor(ctx context.Context, text string) string {
	if !ss.service.Available() || text == "" {
		return ""
	}

	record, err := ss.service.Extract(ctx, text, authorSchema)
	if err != nil {
		ss.logger.Debug("Author extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}

	return models.MapString(record, "author")
}

// ExtractProductDetail asks the service for the richer detail-page
// shape. Returns nil when unavailable or extraction failed; the caller
// falls back to deterministic secondary selectors.
func (ss *StrategySelector) ExtractProductDetail(ctx context.Context, html string) map[string]interface{} {
	if !ss.service.Available() {
		return nil
	}

	record, err := ss.service.Extract(ctx, html, productDetailSchema)
	if err != nil {
		ss.logger.Debug("Detail extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	return record
}

// extractFragment runs the service against one container's markup,
// degrading to nil when the service is unavailable or fails.
func (ss *StrategySelector) extractFragment(ctx context.Context, container *goquery.Selection, schema llm.Schema) map[string]interface{} {
	if !ss.service.Available() {
		return nil
	}

	fragment, err := goquery.OuterHtml(container)
	if err != nil || fragment == "" {
		return nil
	}

	record, err := ss.service.Extract(ctx, fragment, schema)
	if err != nil {
		ss.logger.Debug("Structured extraction failed", map[string]interface{}{
			"schema": schema.Name,
			"error":  err.Error(),
		})
		return nil
	}

	return record
}

// mergeProductCandidates keeps deterministic values where present and
// fills gaps from the service's record.
func mergeProductCandidates(det, svc models.ProductCandidate) models.ProductCandidate {
	merged := det
	if merged.Name == "" {
		merged.Name = svc.Name
	}
	if merged.Price == 0 {
		merged.Price = svc.Price
	}
	if merged.Category == "" {
		merged.Category = svc.Category
	}
	if merged.ProductID == "" {
		merged.ProductID = svc.ProductID
	}
	return merged
}

// mergeBookCandidates keeps deterministic values where present and
// fills gaps from the service's record.
func mergeBookCandidates(det, svc models.BookCandidate) models.BookCandidate {
	merged := det
	if merged.Title == "" {
		merged.Title = svc.Title
	}
	if merged.Price == "" {
		merged.Price = svc.Price
	}
	if merged.Author == nil {
		merged.Author = svc.Author
	}
	if len(merged.Categories) == 0 {
		merged.Categories = svc.Categories
	}
	if merged.Availability == "" {
		merged.Availability = svc.Availability
	}
	if merged.Rating == 0 {
		merged.Rating = svc.Rating
	}
	if merged.Description == "" {
		merged.Description = svc.Description
	}
	if merged.BookURL == "" {
		merged.BookURL = svc.BookURL
	}
	return merged
}
