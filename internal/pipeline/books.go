package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"starlift/internal/config"
	"starlift/internal/fetch"
	"starlift/internal/logging"
	"starlift/internal/workers"
	"starlift/pkg/models"
)

// BooksSource scrapes the paginated book catalogue. Authors and
// categories are rarely on the listing page, so every accepted book
// gets a detail page visit before fact assembly.
type BooksSource struct {
	config   *config.Config
	fetcher  fetch.Fetcher
	pool     *workers.WorkerPool
	selector *StrategySelector
	authors  *AuthorResolver
	logger   logging.Logger
}

// NewBooksSource creates the books source pipeline
func NewBooksSource(cfg *config.Config, fetcher fetch.Fetcher, pool *workers.WorkerPool, selector *StrategySelector) *BooksSource {
	return &BooksSource{
		config:   cfg,
		fetcher:  fetcher,
		pool:     pool,
		selector: selector,
		authors:  NewAuthorResolver(cfg.Sources.AllowPlaceholders),
		logger:   logging.GetGlobalLogger(),
	}
}

// Run scrapes all catalogue pages until pagination is exhausted, then
// checks the skip-rate gate over the whole source.
func (s *BooksSource) Run(ctx context.Context) (*BooksOutput, error) {
	s.logger.Info("Starting books scraping", map[string]interface{}{
		"base_url": s.config.Sources.BooksBaseURL,
	})

	out := NewBooksOutput()
	gate := NewQualityGate("books", s.config.Sources.SkipRateThreshold)
	baseURL := strings.TrimSuffix(s.config.Sources.BooksBaseURL, "/")

	for page := 1; page <= s.config.Sources.MaxPages; page++ {
		pageURL := fmt.Sprintf("%s/index.html", baseURL)
		if page > 1 {
			pageURL = fmt.Sprintf("%s/catalogue/page-%d.html", baseURL, page)
		}

		fetched, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			s.logger.Warn("Failed to fetch books page, stopping pagination", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			break
		}

		if fetched.HTML == "" {
			s.logger.Warn("No HTML content from books page", map[string]interface{}{"page": page})
			break
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fetched.HTML))
		if err != nil {
			s.logger.Warn("Failed to parse books page", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			break
		}

		containers := BookContainers(doc)
		if len(containers) == 0 {
			s.logger.Info("No books found, stopping pagination", map[string]interface{}{"page": page})
			break
		}

		gate.RecordFound(len(containers))

		var accepted []models.BookCandidate
		var rejected []map[string]interface{}
		for _, container := range containers {
			candidate := s.selector.SelectBook(ctx, container, baseURL)
			if candidate == nil {
				continue
			}
			if ValidBook(*candidate) {
				accepted = append(accepted, *candidate)
			} else if len(rejected) < failedSamplesPerUnit {
				sample := map[string]interface{}{
					"title": candidate.Title,
					"price": candidate.Price,
				}
				if candidate.Author != nil {
					sample["author"] = *candidate.Author
				}
				rejected = append(rejected, sample)
			}
		}

		gate.AddSamples(rejected)

		if len(accepted) == 0 {
			s.logger.Info("No valid books extracted, stopping pagination", map[string]interface{}{"page": page})
			break
		}

		gate.RecordAccepted(len(accepted))
		s.logger.Info("Books page processed", map[string]interface{}{
			"page":     page,
			"found":    len(containers),
			"accepted": len(accepted),
		})

		for _, candidate := range accepted {
			s.addBook(ctx, out, candidate)
		}
	}

	if err := gate.Check(); err != nil {
		return nil, err
	}

	s.logger.Info("Books scraping finished", map[string]interface{}{
		"books": len(out.Books),
	})
	return out, nil
}

// addBook enriches a candidate from its detail page, resolves author
// and category codes, and appends the fact plus its category bridges.
func (s *BooksSource) addBook(ctx context.Context, out *BooksOutput, candidate models.BookCandidate) {
	bookID := uuid.New().String()

	authorName := ""
	if candidate.Author != nil {
		authorName = strings.TrimSpace(*candidate.Author)
	}
	categories := candidate.Categories
	description := candidate.Description

	if candidate.BookURL != "" {
		if doc := s.fetchDetail(ctx, candidate.BookURL); doc != nil {
			if authorName == "" {
				if name, ok := s.authors.Resolve(ctx, AuthorInput{
					Title:    candidate.Title,
					Doc:      doc,
					Selector: s.selector,
				}); ok {
					authorName = name
				}
			}

			if len(categories) == 0 {
				categories = extractBookCategories(doc)
			}

			if desc := strings.TrimSpace(doc.Find("#product_description + p, .product_description, [itemprop='description']").First().Text()); desc != "" {
				description = desc
			}
		}
	}

	if authorName == "" {
		authorName = "Not Specified"
	}
	if len(categories) == 0 {
		categories = []string{"Fiction"}
	}

	availability := candidate.Availability
	if availability == "" {
		availability = "In stock"
	}

	rating := candidate.Rating
	if rating < 1 || rating > 5 {
		rating = 3
	}

	book := models.Book{
		ID:           bookID,
		Title:        candidate.Title,
		Price:        models.ParsePrice(candidate.Price),
		AuthorCode:   out.Authors.Resolve(authorName),
		Availability: availability,
		Rating:       rating,
		Description:  description,
		LinkID:       uuid.New().String(),
		CapturedAt:   time.Now(),
	}

	if err := models.SanityCheck(book); err != nil {
		s.logger.Warn("Dropping mis-assembled book record", map[string]interface{}{
			"title": book.Title,
			"error": err.Error(),
		})
		return
	}
	out.Books = append(out.Books, book)

	for _, category := range categories {
		out.CategoryBridges = append(out.CategoryBridges, models.BookCategoryBridge{
			BookID:       bookID,
			CategoryCode: out.Categories.Resolve(category),
		})
	}
}

// fetchDetail fetches and parses a book detail page, returning nil on
// any failure so enrichment degrades instead of aborting the book.
func (s *BooksSource) fetchDetail(ctx context.Context, bookURL string) *goquery.Document {
	page, err := s.pool.FetchPage(ctx, bookURL)
	if err != nil {
		s.logger.Debug("Could not fetch book detail page", map[string]interface{}{
			"url":   bookURL,
			"error": err.Error(),
		})
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		s.logger.Debug("Could not parse book detail page", map[string]interface{}{
			"url":   bookURL,
			"error": err.Error(),
		})
		return nil
	}

	return doc
}

// extractBookCategories pulls category names from breadcrumbs, category
// links, or a detail table, in that order.
func extractBookCategories(doc *goquery.Document) []string {
	var categories []string
	seen := map[string]bool{}

	doc.Find(".breadcrumb a, ul.breadcrumb a, nav a").Each(func(i int, link *goquery.Selection) {
		text := strings.TrimSpace(link.Text())
		if text == "" || seen[text] {
			return
		}
		switch strings.ToLower(text) {
		case "home", "books", "catalogue":
			return
		}
		seen[text] = true
		categories = append(categories, text)
	})

	if len(categories) == 0 {
		if text := strings.TrimSpace(doc.Find(".product_page a[href*='/category/'], a[href*='/catalogue/category/']").First().Text()); text != "" {
			switch strings.ToLower(text) {
			case "home", "books":
			default:
				categories = append(categories, text)
			}
		}
	}

	if len(categories) == 0 {
		doc.Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
			if !strings.EqualFold(strings.TrimSpace(th.Text()), "category") {
				return true
			}
			if text := strings.TrimSpace(th.Next().Text()); text != "" {
				categories = append(categories, text)
				return false
			}
			return true
		})
	}

	return categories
}
