// Package web renders post cards and serves the like interactions of mounted cards.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"Morsel/internal/core/postview"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates holds the parsed HTML templates for the web interface.
type Templates struct {
	templates *template.Template
}

// NewTemplates creates a new Templates instance by parsing all embedded templates.
func NewTemplates() (*Templates, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Templates{templates: tmpl}, nil
}

// Render renders a named template with the provided data to the response writer.
// Returns an error if the template doesn't exist or rendering fails.
func (t *Templates) Render(w http.ResponseWriter, name string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl := t.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	return nil
}

// CardData is a card as handed to post_card.html
type CardData struct {
	postview.CardView
	// MapsLink uses app deep link schemes that html/template would otherwise reject
	MapsLink template.URL
}

func newCardData(card postview.CardView) CardData {
	return CardData{
		CardView: card,
		MapsLink: template.URL(card.MapsLink), // fixed scheme, query-escaped location
	}
}

// FeedPageData holds data for feed.html
type FeedPageData struct {
	Title  string
	UserID string
	Cards  []CardData
}

// SessionPageData holds data for session.html
type SessionPageData struct {
	Title  string
	UserID string
	Error  string
}
