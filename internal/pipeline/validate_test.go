package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"starlift/pkg/models"
)

func TestValidProduct(t *testing.T) {
	tests := []struct {
		name      string
		candidate models.ProductCandidate
		want      bool
	}{
		{"accepted", models.ProductCandidate{Name: "Widget", Price: 9.99}, true},
		{"zero price rejected", models.ProductCandidate{Name: "Widget", Price: 0}, false},
		{"boundary price accepted", models.ProductCandidate{Name: "Widget", Price: 0.01}, true},
		{"negative price rejected", models.ProductCandidate{Name: "Widget", Price: -1}, false},
		{"empty name rejected", models.ProductCandidate{Name: "", Price: 5}, false},
		{"whitespace name rejected", models.ProductCandidate{Name: "   ", Price: 5}, false},
		{"nav keyword rejected", models.ProductCandidate{Name: "API Docs", Price: 5}, false},
		{"login link rejected", models.ProductCandidate{Name: "Login", Price: 5}, false},
		{"cart link rejected", models.ProductCandidate{Name: "Cart", Price: 5}, false},
		{"unknown category rejected", models.ProductCandidate{Name: "Widget", Price: 5, Category: "Unknown"}, false},
		{"empty category accepted", models.ProductCandidate{Name: "Widget", Price: 5, Category: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidProduct(tt.candidate))
		})
	}
}

func TestValidBook(t *testing.T) {
	unknown := "Unknown"
	author := "Herman Melville"

	tests := []struct {
		name      string
		candidate models.BookCandidate
		want      bool
	}{
		{"accepted with author", models.BookCandidate{Title: "Moby Dick", Author: &author}, true},
		{"accepted with nil author", models.BookCandidate{Title: "Moby Dick"}, true},
		{"unknown sentinel rejected", models.BookCandidate{Title: "Moby Dick", Author: &unknown}, false},
		{"empty title rejected", models.BookCandidate{Title: ""}, false},
		{"whitespace title rejected", models.BookCandidate{Title: "  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidBook(tt.candidate))
		})
	}
}

func TestValidFilm(t *testing.T) {
	tests := []struct {
		name      string
		candidate models.FilmCandidate
		want      bool
	}{
		{"accepted", models.FilmCandidate{Title: "Inception", Year: 2010}, true},
		{"accepted without director", models.FilmCandidate{Title: "Gravity"}, true},
		{"empty title rejected", models.FilmCandidate{Title: ""}, false},
		{"unknown sentinel rejected", models.FilmCandidate{Title: "Unknown"}, false},
		{"unknown sentinel case-insensitive", models.FilmCandidate{Title: "unknown"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidFilm(tt.candidate))
		})
	}
}

func TestIsNavArtifact(t *testing.T) {
	assert.True(t, IsNavArtifact("File Download"))
	assert.True(t, IsNavArtifact("GraphQL playground"))
	assert.False(t, IsNavArtifact("Box of Chocolate Candy"))
}
