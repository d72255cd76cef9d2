package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"starlift/internal/config"
	"starlift/internal/fetch"
	"starlift/internal/logging"
	"starlift/pkg/models"
)

// FilmsSource scrapes the award-film listing one year bucket at a
// time. The AJAX endpoint returns structured JSON (title, year, award
// counts); director and actor credits come from the rendered page or
// the resolution strategies.
type FilmsSource struct {
	config   *config.Config
	fetcher  fetch.Fetcher
	selector *StrategySelector
	credits  *CreditsResolver
	logger   logging.Logger
}

// NewFilmsSource creates the films source pipeline
func NewFilmsSource(cfg *config.Config, fetcher fetch.Fetcher, selector *StrategySelector) *FilmsSource {
	return &FilmsSource{
		config:   cfg,
		fetcher:  fetcher,
		selector: selector,
		credits:  NewCreditsResolver(cfg.Sources.AllowPlaceholders),
		logger:   logging.GetGlobalLogger(),
	}
}

// Run scrapes every configured year bucket, then checks the skip-rate
// gate over the whole source. A failed year is skipped, not fatal.
func (s *FilmsSource) Run(ctx context.Context) (*FilmsOutput, error) {
	s.logger.Info("Starting films scraping", map[string]interface{}{
		"base_url": s.config.Sources.FilmsBaseURL,
		"years":    len(s.config.FilmYears()),
	})

	out := NewFilmsOutput()
	gate := NewQualityGate("films", s.config.Sources.SkipRateThreshold)
	baseURL := s.config.Sources.FilmsBaseURL

	for _, year := range s.config.FilmYears() {
		candidates := s.scrapeYear(ctx, baseURL, year)
		if len(candidates) == 0 {
			s.logger.Warn("No films found for year", map[string]interface{}{"year": year})
			continue
		}

		gate.RecordFound(len(candidates))

		var accepted []models.FilmCandidate
		var rejected []map[string]interface{}
		for _, candidate := range candidates {
			if ValidFilm(candidate) {
				accepted = append(accepted, candidate)
			} else if len(rejected) < failedSamplesPerUnit {
				rejected = append(rejected, map[string]interface{}{
					"title": candidate.Title,
					"year":  candidate.Year,
				})
			}
		}

		gate.AddSamples(rejected)

		if len(accepted) == 0 {
			s.logger.Warn("No valid films extracted for year", map[string]interface{}{"year": year})
			continue
		}

		gate.RecordAccepted(len(accepted))
		s.logger.Info("Films year processed", map[string]interface{}{
			"year":     year,
			"found":    len(candidates),
			"accepted": len(accepted),
		})

		for _, candidate := range accepted {
			s.addFilm(out, candidate, year)
		}
	}

	if err := gate.Check(); err != nil {
		return nil, err
	}

	s.logger.Info("Films scraping finished", map[string]interface{}{
		"films": len(out.Films),
	})
	return out, nil
}

// scrapeYear fetches one year bucket and returns its film candidates,
// enriched with credits where the rendered page carries them.
func (s *FilmsSource) scrapeYear(ctx context.Context, baseURL string, year int) []models.FilmCandidate {
	mainPage, err := s.fetcher.Fetch(ctx, fmt.Sprintf("%s?year=%d", baseURL, year))
	if err != nil {
		s.logger.Warn("Failed to fetch films listing page", map[string]interface{}{
			"year":  year,
			"error": err.Error(),
		})
		mainPage = &fetch.Page{}
	}

	ajaxPage, err := s.fetcher.Fetch(ctx, fmt.Sprintf("%s?ajax=true&year=%d", baseURL, year))
	if err != nil {
		s.logger.Warn("Failed to fetch films AJAX payload", map[string]interface{}{
			"year":  year,
			"error": err.Error(),
		})
		ajaxPage = &fetch.Page{}
	}

	candidates := parseFilmsPayload(ajaxPage.HTML, ajaxPage.Markdown)

	rows := filmRowsFromPage(mainPage)

	if len(candidates) > 0 {
		s.mergeCredits(ctx, candidates, rows)
		return candidates
	}

	// The payload was unparseable; fall back to structured extraction
	// over the rendered rows.
	if len(rows) > 30 {
		rows = rows[:30]
	}
	return s.selector.ExtractFilms(ctx, rows)
}

// mergeCredits fills director and actors on parsed candidates from the
// rendered page rows, deterministically first, then via extraction.
func (s *FilmsSource) mergeCredits(ctx context.Context, candidates []models.FilmCandidate, rows []*goquery.Selection) {
	credits := extractCreditsCSS(rows)
	if len(credits) == 0 && len(rows) > 0 {
		if len(rows) > 30 {
			rows = rows[:30]
		}
		for title, candidate := range s.selector.ExtractFilmCredits(ctx, rows) {
			credits[title] = FilmCredits{Director: candidate.Director, Actors: candidate.Actors}
		}
	}

	for i := range candidates {
		if c, ok := credits[candidates[i].Title]; ok {
			if candidates[i].Director == "" {
				candidates[i].Director = c.Director
			}
			if len(candidates[i].Actors) == 0 {
				candidates[i].Actors = c.Actors
			}
		}
	}
}

// addFilm resolves director, actor and award codes and appends the
// fact plus its bridges.
func (s *FilmsSource) addFilm(out *FilmsOutput, candidate models.FilmCandidate, bucketYear int) {
	filmID := uuid.New().String()

	directorName := strings.TrimSpace(candidate.Director)
	actors := candidate.Actors

	if directorName == "" || strings.EqualFold(directorName, "unknown") || strings.EqualFold(directorName, "unknown director") {
		if resolved, ok := s.credits.Resolve(candidate.Title, bucketYear); ok {
			directorName = resolved.Director
			if len(actors) == 0 {
				actors = resolved.Actors
			}
		} else {
			directorName = "Not Specified"
		}
	}

	awardName := "Best Picture"
	if !candidate.BestPicture && candidate.Awards > 0 {
		awardName = "Academy Award Winner"
	}

	year := candidate.Year
	if year == 0 {
		year = bucketYear
	}

	film := models.Film{
		ID:           filmID,
		Title:        candidate.Title,
		Year:         year,
		AwardCode:    out.Awards.Resolve(awardName),
		DirectorCode: out.Directors.Resolve(directorName),
		CapturedAt:   time.Now(),
	}

	if err := models.SanityCheck(film); err != nil {
		s.logger.Warn("Dropping mis-assembled film record", map[string]interface{}{
			"title": film.Title,
			"error": err.Error(),
		})
		return
	}
	out.Films = append(out.Films, film)

	for _, actor := range actors {
		out.ActorBridges = append(out.ActorBridges, models.FilmActorBridge{
			FilmID:    filmID,
			ActorCode: out.Actors.Resolve(actor),
		})
	}

	out.AwardBridges = append(out.AwardBridges, models.FilmAwardBridge{
		FilmID:    filmID,
		AwardCode: film.AwardCode,
		AwardYear: year,
	})
}

var jsonArrayPattern = regexp.MustCompile(`(\[[\s\S]{50,}\])`)
var fencedJSONPattern = regexp.MustCompile("```(?:json)?\\s*(\\[[\\s\\S]*?\\])\\s*```")

// parseFilmsPayload decodes the AJAX response into film candidates. The
// endpoint usually returns a bare JSON array, but depending on the
// fetch engine the payload may arrive wrapped in HTML or a markdown
// fence, so progressively messier representations are tried in order.
func parseFilmsPayload(html, markdown string) []models.FilmCandidate {
	for _, content := range []string{html, markdown} {
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || strings.HasPrefix(trimmed, "<") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			if films := decodeFilmsJSON(trimmed); len(films) > 0 {
				return films
			}
		}
	}

	if strings.TrimSpace(html) != "" {
		if films := filmsFromDocument(html); len(films) > 0 {
			return films
		}
	}

	for _, content := range []string{markdown, html} {
		if m := fencedJSONPattern.FindStringSubmatch(content); m != nil {
			if films := decodeFilmsJSON(unescapeJSON(m[1])); len(films) > 0 {
				return films
			}
		}
	}

	return nil
}

// filmsFromDocument looks for the JSON payload inside <pre> and
// <script> tags of an HTML-wrapped response.
func filmsFromDocument(html string) []models.FilmCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var films []models.FilmCandidate

	doc.Find("pre").EachWithBreak(func(i int, pre *goquery.Selection) bool {
		text := strings.TrimSpace(pre.Text())
		if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
			films = decodeFilmsJSON(text)
		}
		return len(films) == 0
	})
	if len(films) > 0 {
		return films
	}

	doc.Find("script").EachWithBreak(func(i int, script *goquery.Selection) bool {
		if m := jsonArrayPattern.FindStringSubmatch(script.Text()); m != nil {
			films = decodeFilmsJSON(m[1])
		}
		return len(films) == 0
	})

	return films
}

// decodeFilmsJSON decodes a JSON array or a {"films": [...]} wrapper
func decodeFilmsJSON(raw string) []models.FilmCandidate {
	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}

	var items []interface{}
	switch v := data.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if nested, ok := v["films"].([]interface{}); ok {
			items = nested
		}
	}

	var films []models.FilmCandidate
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			films = append(films, models.FilmCandidateFromMap(m))
		}
	}
	return films
}

func unescapeJSON(s string) string {
	s = strings.ReplaceAll(s, `\\"`, `"`)
	s = strings.ReplaceAll(s, `\\\\`, `\`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return s
}

func filmRowsFromPage(page *fetch.Page) []*goquery.Selection {
	if page == nil || page.HTML == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil
	}
	return FilmRows(doc)
}

// extractCreditsCSS pulls director and actor names out of rendered
// table rows, keyed by film title.
func extractCreditsCSS(rows []*goquery.Selection) map[string]FilmCredits {
	credits := map[string]FilmCredits{}

	for _, row := range rows {
		cells := selectionList(row.Find("td, th"))
		if len(cells) < 2 {
			continue
		}

		title := ""
		director := ""
		actorsText := ""

		for i, cell := range cells {
			text := strings.TrimSpace(cell.Text())
			class := strings.ToLower(cell.AttrOr("class", ""))

			if title == "" && strings.Contains(class, "title") {
				title = text
				continue
			}
			if title == "" && len(text) > 5 && len(text) < 100 {
				title = text
			}

			lower := strings.ToLower(text)
			if strings.Contains(lower, "director") && i+1 < len(cells) {
				director = strings.TrimSpace(cells[i+1].Text())
			}
			if (strings.Contains(lower, "actor") || strings.Contains(lower, "cast")) && i+1 < len(cells) {
				actorsText = strings.TrimSpace(cells[i+1].Text())
			}
		}

		if title == "" {
			continue
		}

		var actors []string
		for _, actor := range strings.Split(actorsText, ",") {
			if actor = strings.TrimSpace(actor); actor != "" {
				actors = append(actors, actor)
			}
		}

		if director != "" || len(actors) > 0 {
			credits[title] = FilmCredits{Director: director, Actors: actors}
		}
	}

	return credits
}
