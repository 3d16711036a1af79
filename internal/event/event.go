package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Record represents one scraped event detail page
type Record struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"` // schedule text as rendered by the site
	Location    string    `json:"location"`
	Organizer   string    `json:"organizer"`
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// GenerateID creates a deterministic ID for an event from its detail page URL
func GenerateID(url string) string {
	h := sha1.New()
	h.Write([]byte(strings.TrimSpace(url)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NewRecord creates a Record stamped with the current UTC time
func NewRecord(url, title, description, date, location, organizer string) *Record {
	return &Record{
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		Organizer:   organizer,
		URL:         url,
		ScrapedAt:   time.Now().UTC(),
	}
}

// ID returns the deterministic ID of the record's URL
func (r *Record) ID() string {
	return GenerateID(r.URL)
}

// MissingFields lists the JSON names of the text fields that came back empty
func (r *Record) MissingFields() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"title", r.Title},
		{"description", r.Description},
		{"date", r.Date},
		{"location", r.Location},
		{"organizer", r.Organizer},
	}
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
