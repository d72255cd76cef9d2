package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilmsPayloadDirectJSON(t *testing.T) {
	payload := `[
		{"title": "Inception", "year": 2010, "awards": 4, "nominations": 8, "best_picture": false},
		{"title": "The King's Speech", "year": 2010, "awards": 4, "nominations": 12, "best_picture": true}
	]`

	films := parseFilmsPayload(payload, "")
	require.Len(t, films, 2)
	assert.Equal(t, "Inception", films[0].Title)
	assert.Equal(t, 2010, films[0].Year)
	assert.Equal(t, 4, films[0].Awards)
	assert.False(t, films[0].BestPicture)
	assert.True(t, films[1].BestPicture)
}

func TestParseFilmsPayloadWrapperObject(t *testing.T) {
	payload := `{"films": [{"title": "Argo", "year": 2012, "best_picture": true}]}`

	films := parseFilmsPayload(payload, "")
	require.Len(t, films, 1)
	assert.Equal(t, "Argo", films[0].Title)
}

func TestParseFilmsPayloadFromPreTag(t *testing.T) {
	html := `<html><body><pre>[{"title": "Gravity", "year": 2013, "awards": 7}]</pre></body></html>`

	films := parseFilmsPayload(html, "")
	require.Len(t, films, 1)
	assert.Equal(t, "Gravity", films[0].Title)
	assert.Equal(t, 7, films[0].Awards)
}

func TestParseFilmsPayloadFromScriptTag(t *testing.T) {
	html := `<html><body><script>var films = [{"title": "Spotlight", "year": 2015, "awards": 2, "nominations": 6, "best_picture": true}];</script></body></html>`

	films := parseFilmsPayload(html, "")
	require.Len(t, films, 1)
	assert.Equal(t, "Spotlight", films[0].Title)
}

func TestParseFilmsPayloadFromMarkdownFence(t *testing.T) {
	markdown := "Response:\n```json\n[{\"title\": \"Birdman\", \"year\": 2014}]\n```\n"

	films := parseFilmsPayload("", markdown)
	require.Len(t, films, 1)
	assert.Equal(t, "Birdman", films[0].Title)
}

func TestParseFilmsPayloadUnparseable(t *testing.T) {
	assert.Nil(t, parseFilmsPayload("<html><body><p>outage</p></body></html>", "plain text"))
	assert.Nil(t, parseFilmsPayload("", ""))
}

func TestExtractCreditsCSS(t *testing.T) {
	doc := parseDocument(t, `<html><body><table><tbody>
		<tr class="film">
			<td class="film-title">The Social Network</td>
			<td>Director</td><td>David Fincher</td>
			<td>Cast</td><td>Jesse Eisenberg, Andrew Garfield</td>
		</tr>
	</tbody></table></body></html>`)

	credits := extractCreditsCSS(FilmRows(doc))
	require.Contains(t, credits, "The Social Network")
	assert.Equal(t, "David Fincher", credits["The Social Network"].Director)
	assert.Equal(t, []string{"Jesse Eisenberg", "Andrew Garfield"}, credits["The Social Network"].Actors)
}

func TestAddFilmResolvesAwardAndCredits(t *testing.T) {
	cfg := testConfig(t)
	source := NewFilmsSource(cfg, nil, NewStrategySelector(&fakeExtractor{}))
	out := NewFilmsOutput()

	source.addFilm(out, filmCandidate("Inception", 2010, 4, false), 2010)
	source.addFilm(out, filmCandidate("The King's Speech", 2010, 4, true), 2010)
	source.addFilm(out, filmCandidate("Some Indie Film", 0, 0, false), 2010)

	require.Len(t, out.Films, 3)

	// awards>0 without best_picture
	assert.Equal(t, out.Awards.Resolve("Academy Award Winner"), out.Films[0].AwardCode)
	// best_picture flag
	assert.Equal(t, out.Awards.Resolve("Best Picture"), out.Films[1].AwardCode)
	// no awards at all defaults to Best Picture
	assert.Equal(t, out.Films[1].AwardCode, out.Films[2].AwardCode)

	// director resolved from the title lookup
	assert.Equal(t, out.Directors.Resolve("Christopher Nolan"), out.Films[0].DirectorCode)

	// missing year falls back to the bucket year
	assert.Equal(t, 2010, out.Films[2].Year)

	// one award bridge per film, actor bridges only where credits exist
	assert.Len(t, out.AwardBridges, 3)
	assert.NotEmpty(t, out.ActorBridges)
}

func TestAddFilmWithoutPlaceholdersUsesSentinel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources.AllowPlaceholders = false

	source := NewFilmsSource(cfg, nil, NewStrategySelector(&fakeExtractor{}))
	out := NewFilmsOutput()

	source.addFilm(out, filmCandidate("A Film Nobody Knows", 2011, 0, false), 2011)

	require.Len(t, out.Films, 1)
	assert.Equal(t, out.Directors.Resolve("Not Specified"), out.Films[0].DirectorCode)
	assert.Empty(t, out.ActorBridges)
}
