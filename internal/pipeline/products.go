package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"starlift/internal/config"
	"starlift/internal/fetch"
	"starlift/internal/logging"
	"starlift/internal/workers"
	"starlift/pkg/models"
	"starlift/pkg/utils"
)

const failedSamplesPerUnit = 5

// ProductsSource scrapes the paginated products listing, enriches each
// accepted product from its detail page, and accumulates facts,
// categories and detail sub-records.
type ProductsSource struct {
	config   *config.Config
	fetcher  fetch.Fetcher
	pool     *workers.WorkerPool
	selector *StrategySelector
	logger   logging.Logger
}

// NewProductsSource creates the products source pipeline
func NewProductsSource(cfg *config.Config, fetcher fetch.Fetcher, pool *workers.WorkerPool, selector *StrategySelector) *ProductsSource {
	return &ProductsSource{
		config:   cfg,
		fetcher:  fetcher,
		pool:     pool,
		selector: selector,
		logger:   logging.GetGlobalLogger(),
	}
}

// Run scrapes all listing pages until pagination is exhausted, then
// checks the skip-rate gate over the whole source.
func (s *ProductsSource) Run(ctx context.Context) (*ProductsOutput, error) {
	s.logger.Info("Starting products scraping", map[string]interface{}{
		"base_url": s.config.Sources.ProductsBaseURL,
	})

	out := NewProductsOutput()
	gate := NewQualityGate("products", s.config.Sources.SkipRateThreshold)
	baseURL := s.config.Sources.ProductsBaseURL

	for page := 1; page <= s.config.Sources.MaxPages; page++ {
		pageURL := baseURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s?page=%d", baseURL, page)
		}

		fetched, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			s.logger.Warn("Failed to fetch products page, stopping pagination", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			break
		}

		if fetched.HTML == "" {
			s.logger.Warn("No HTML content from products page", map[string]interface{}{"page": page})
			break
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fetched.HTML))
		if err != nil {
			s.logger.Warn("Failed to parse products page", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			break
		}

		containers := ProductContainers(doc)
		if len(containers) == 0 {
			s.logger.Info("No products found, stopping pagination", map[string]interface{}{"page": page})
			break
		}

		gate.RecordFound(len(containers))

		var accepted []models.ProductCandidate
		var rejected []map[string]interface{}
		for _, container := range containers {
			candidate := s.selector.SelectProduct(ctx, container)
			if candidate == nil {
				continue
			}
			if ValidProduct(*candidate) {
				accepted = append(accepted, *candidate)
			} else if len(rejected) < failedSamplesPerUnit {
				rejected = append(rejected, map[string]interface{}{
					"name":     candidate.Name,
					"price":    candidate.Price,
					"category": candidate.Category,
				})
			}
		}

		gate.AddSamples(rejected)

		if len(accepted) == 0 {
			s.logger.Info("No valid products extracted, stopping pagination", map[string]interface{}{"page": page})
			break
		}

		gate.RecordAccepted(len(accepted))
		s.logger.Info("Products page processed", map[string]interface{}{
			"page":     page,
			"found":    len(containers),
			"accepted": len(accepted),
		})

		for _, candidate := range accepted {
			s.addProduct(ctx, out, candidate)
		}
	}

	if err := gate.Check(); err != nil {
		return nil, err
	}

	s.logger.Info("Products scraping finished", map[string]interface{}{
		"products": len(out.Products),
	})
	return out, nil
}

// addProduct converts an accepted candidate into a fact record and
// enriches it from the detail page.
func (s *ProductsSource) addProduct(ctx context.Context, out *ProductsOutput, candidate models.ProductCandidate) {
	categoryName := candidate.Category
	if categoryName == "" {
		categoryName = inferProductCategory(candidate.Name)
	}

	product := models.Product{
		ID:           candidate.ProductID,
		Name:         candidate.Name,
		Price:        candidate.Price,
		CategoryCode: out.Categories.Resolve(categoryName),
		LinkID:       uuid.New().String(),
		CapturedAt:   time.Now(),
	}

	if err := models.SanityCheck(product); err != nil {
		s.logger.Warn("Dropping mis-assembled product record", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		return
	}
	out.Products = append(out.Products, product)

	s.enrichProduct(ctx, out, candidate.ProductID, product.ID)
}

// inferProductCategory guesses a category from the product name when
// the listing carries none.
func inferProductCategory(name string) string {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "chocolate", "candy", "food", "snack"):
		return "Food & Beverages"
	case containsAny(lower, "potion", "energy", "drink"):
		return "Beverages"
	case containsAny(lower, "game", "toy", "collectible"):
		return "Entertainment"
	default:
		return "General"
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// enrichProduct fetches the detail page through the worker pool and
// collects description, variants, reviews and similar products. Any
// failure here is logged and contained; sibling products are unaffected.
func (s *ProductsSource) enrichProduct(ctx context.Context, out *ProductsOutput, urlID, productID string) {
	detailURL := s.detailURL(urlID)

	page, err := s.pool.FetchPage(ctx, detailURL)
	if err != nil {
		s.logger.Warn("Failed to fetch product detail", map[string]interface{}{
			"product_id": productID,
			"url":        detailURL,
			"error":      err.Error(),
		})
		return
	}

	var detail models.ProductDetail
	if record := s.selector.ExtractProductDetail(ctx, page.HTML); record != nil {
		detail = models.ProductDetailFromMap(record)
	}

	if len(detail.Variants) == 0 && len(detail.Reviews) == 0 {
		if fallback, err := extractDetailCSS(page.HTML); err == nil {
			if detail.Description == "" {
				detail.Description = fallback.Description
			}
			if len(detail.Variants) == 0 {
				detail.Variants = fallback.Variants
			}
			if len(detail.Reviews) == 0 {
				detail.Reviews = fallback.Reviews
			}
			if len(detail.SimilarProducts) == 0 {
				detail.SimilarProducts = fallback.SimilarProducts
			}
		}
	}

	if detail.Description != "" {
		for i := range out.Products {
			if out.Products[i].ID == productID {
				out.Products[i].Description = detail.Description
				break
			}
		}
	}

	for idx, variant := range detail.Variants {
		out.Variants = append(out.Variants, models.ProductVariant{
			ID:            utils.ChildID(productID, "VAR", idx),
			ProductID:     productID,
			Size:          variant.Size,
			Flavor:        variant.Flavor,
			PriceModifier: variant.PriceModifier,
		})
	}

	now := time.Now()
	for idx, review := range detail.Reviews {
		rating := review.Rating
		if rating == 0 {
			rating = 3
		}
		reviewer := review.Reviewer
		if reviewer == "" {
			reviewer = "Anonymous"
		}
		out.Reviews = append(out.Reviews, models.ProductReview{
			ID:         utils.ChildID(productID, "REV", idx),
			ProductID:  productID,
			Rating:     rating,
			Text:       review.Text,
			Reviewer:   reviewer,
			ReviewedAt: &now,
		})
	}

	for _, similar := range detail.SimilarProducts {
		similarID := similar.ProductID
		if similarID == "" {
			similarID = uuid.New().String()
		}
		out.Similar = append(out.Similar, models.SimilarProduct{
			ID:               uuid.New().String(),
			ProductID:        productID,
			SimilarProductID: similarID,
		})
	}
}

// detailURL normalizes a product identifier or URL fragment into an
// absolute detail page URL.
func (s *ProductsSource) detailURL(urlID string) string {
	if strings.HasPrefix(urlID, "http") {
		return urlID
	}

	host := s.config.Sources.ProductsBaseURL
	if u, err := url.Parse(host); err == nil {
		host = u.Scheme + "://" + u.Host
	}

	if strings.HasPrefix(urlID, "/") {
		return host + urlID
	}
	return host + "/product/" + urlID
}

var variantHrefPattern = regexp.MustCompile(`variant=([^&]+)`)
var ratingDigitPattern = regexp.MustCompile(`(\d+)`)

// extractDetailCSS is the deterministic fallback over a product detail
// page when structured extraction produced nothing.
func extractDetailCSS(html string) (models.ProductDetail, error) {
	var detail models.ProductDetail

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return detail, err
	}

	detail.Description = strings.TrimSpace(doc.Find(".description, [class*='description'], #description").First().Text())

	doc.Find("a[href*='variant'], button[data-variant]").Each(func(i int, link *goquery.Selection) {
		size := ""
		if href, ok := link.Attr("href"); ok {
			if m := variantHrefPattern.FindStringSubmatch(href); m != nil {
				size = m[1]
			}
		}
		if size == "" {
			size = strings.TrimSpace(link.Text())
		}
		if size != "" {
			detail.Variants = append(detail.Variants, models.VariantDetail{Size: size})
		}
	})

	doc.Find(".review, [class*='review']").Each(func(i int, review *goquery.Selection) {
		text := strings.TrimSpace(review.Find(".text, .comment, p").First().Text())
		if text == "" {
			return
		}

		rating := 3
		if ratingText := strings.TrimSpace(review.Find(".rating, [class*='rating'], .star").First().Text()); ratingText != "" {
			if m := ratingDigitPattern.FindStringSubmatch(ratingText); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					rating = n
				}
			}
		}

		reviewer := strings.TrimSpace(review.Find(".reviewer, .author, [class*='author']").First().Text())
		if reviewer == "" {
			reviewer = "Anonymous"
		}

		detail.Reviews = append(detail.Reviews, models.ReviewDetail{
			Rating:   rating,
			Text:     text,
			Reviewer: reviewer,
		})
	})

	return detail, nil
}
