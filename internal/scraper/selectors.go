package scraper

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Selectors is the CSS selector table used to locate event cards in search
// results and fields on detail pages
type Selectors struct {
	Card        string `koanf:"card"`
	CardLink    string `koanf:"card_link"`
	Title       string `koanf:"title"`
	Description string `koanf:"description"`
	Date        string `koanf:"date"`
	Location    string `koanf:"location"`
	Organizer   string `koanf:"organizer"`
}

// DefaultSelectors returns the selectors matching Eventbrite's current markup
func DefaultSelectors() Selectors {
	return Selectors{
		Card:        `div[data-testid="event-card"]`,
		CardLink:    `a[href]`,
		Title:       `h1`,
		Description: `[data-testid="event-description"]`,
		Date:        `[data-testid="event-datetime"]`,
		Location:    `[data-testid="event-location"]`,
		Organizer:   `[data-testid="organizer-name"]`,
	}
}

// WithDefaults returns a copy with every empty selector replaced by its default
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	if s.Card == "" {
		s.Card = d.Card
	}
	if s.CardLink == "" {
		s.CardLink = d.CardLink
	}
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Description == "" {
		s.Description = d.Description
	}
	if s.Date == "" {
		s.Date = d.Date
	}
	if s.Location == "" {
		s.Location = d.Location
	}
	if s.Organizer == "" {
		s.Organizer = d.Organizer
	}
	return s
}

// Validate checks that every non-empty selector compiles
func (s Selectors) Validate() error {
	entries := []struct {
		name string
		sel  string
	}{
		{"card", s.Card},
		{"card_link", s.CardLink},
		{"title", s.Title},
		{"description", s.Description},
		{"date", s.Date},
		{"location", s.Location},
		{"organizer", s.Organizer},
	}

	for _, e := range entries {
		if e.sel == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(e.sel); err != nil {
			return fmt.Errorf("invalid %s selector %q: %w", e.name, e.sel, err)
		}
	}
	return nil
}
