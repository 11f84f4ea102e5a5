// Package extract parses job listings out of a rendered Indeed.de results
// page. It works on an HTML snapshot, never against the live browser, so
// extraction is read-only and unit-testable with fixture pages.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/cbrandt/indeedhunt/internal/selectors"
	"github.com/cbrandt/indeedhunt/internal/types"
)

// indeedOrigin prefixes relative listing links.
const indeedOrigin = "https://de.indeed.com"

// Extractor turns listing cards into JobListing records.
type Extractor struct {
	sel selectors.Set
	log zerolog.Logger
}

// New creates an extractor using the given selector set.
func New(sel selectors.Set, log zerolog.Logger) *Extractor {
	return &Extractor{
		sel: sel,
		log: log.With().Str("component", "extract").Logger(),
	}
}

// Listings returns the job records on the page in document order. A card
// missing a required field (title, company, url) is skipped with a warning;
// missing optional fields are nil. A page with no recognizable cards yields
// an empty slice, not an error.
func (e *Extractor) Listings(html string) ([]types.JobListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var cards *goquery.Selection
	for _, sel := range e.sel.JobCards {
		if s := doc.Find(sel); s.Length() > 0 {
			e.log.Debug().Str("selector", sel).Int("cards", s.Length()).Msg("found job cards")
			cards = s
			break
		}
	}
	if cards == nil {
		e.log.Warn().Msg("no job cards found on page")
		return nil, nil
	}

	jobs := make([]types.JobListing, 0, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		job, reason := e.listing(card)
		if job == nil {
			e.log.Warn().Int("card", i).Str("reason", reason).Msg("skipping listing card")
			return
		}
		jobs = append(jobs, *job)
	})
	return jobs, nil
}

// listing extracts one card. The second return value names the missing
// required field when the card is rejected.
func (e *Extractor) listing(card *goquery.Selection) (*types.JobListing, string) {
	title, ok := firstText(card, e.sel.Title)
	if !ok {
		return nil, "missing title"
	}
	company, ok := firstText(card, e.sel.Company)
	if !ok {
		return nil, "missing company"
	}
	href, ok := firstAttr(card, e.sel.JobURL, "href")
	if !ok {
		return nil, "missing url"
	}

	jobURL := absoluteURL(href)
	location, _ := firstText(card, e.sel.Location)
	description, _ := firstText(card, e.sel.Description)

	return &types.JobListing{
		Title:       title,
		Company:     company,
		Location:    location,
		Salary:      optionalText(card, e.sel.Salary),
		Description: description,
		URL:         jobURL,
		DatePosted:  optionalText(card, e.sel.DatePosted),
		JobType:     optionalText(card, e.sel.JobType),
		JobID:       jobID(jobURL),
	}, ""
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty element.
func firstText(card *goquery.Selection, sels []string) (string, bool) {
	for _, sel := range sels {
		if s := card.Find(sel).First(); s.Length() > 0 {
			if text := strings.TrimSpace(s.Text()); text != "" {
				return text, true
			}
		}
	}
	return "", false
}

// optionalText is firstText for nullable fields.
func optionalText(card *goquery.Selection, sels []string) *string {
	if text, ok := firstText(card, sels); ok {
		return &text
	}
	return nil
}

// firstAttr returns the named attribute of the first matching element.
func firstAttr(card *goquery.Selection, sels []string, attr string) (string, bool) {
	for _, sel := range sels {
		if v, ok := card.Find(sel).First().Attr(attr); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return indeedOrigin + href
	}
	return href
}

// jobID pulls Indeed's jk parameter out of a listing URL. Empty when the
// URL does not carry one.
func jobID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("jk")
}
