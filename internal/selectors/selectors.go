// Package selectors holds the Indeed.de DOM selectors and Cloudflare page
// signatures. Indeed rotates its markup regularly, so everything here is
// data: each field carries an ordered list of fallback selectors, and a
// YAML overlay file can replace any of them without a rebuild.
package selectors

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Set is the full collection of selectors one scrape needs.
type Set struct {
	// Listing card and per-field selectors, tried in order.
	JobCards    []string `yaml:"job_cards"`
	Title       []string `yaml:"title"`
	Company     []string `yaml:"company"`
	Location    []string `yaml:"location"`
	Salary      []string `yaml:"salary"`
	Description []string `yaml:"description"`
	JobURL      []string `yaml:"job_url"`
	DatePosted  []string `yaml:"date_posted"`
	JobType     []string `yaml:"job_type"`

	// Pagination.
	NextPage []string `yaml:"next_page"`

	// Cookie consent dialogs.
	ConsentButtons  []string `yaml:"consent_buttons"`
	ConsentOverlays []string `yaml:"consent_overlays"`

	// Cloudflare / CAPTCHA interstitials.
	ChallengeMarkers []string `yaml:"challenge_markers"`
	// Substrings matched case-insensitively against the page title.
	ChallengeTitles []string `yaml:"challenge_titles"`
}

// Default returns the selectors known to work against the current Indeed.de
// markup. Update these when scraping breaks.
func Default() Set {
	return Set{
		JobCards: []string{
			`div[data-testid="jobCard"]`,
			`.jobsearch-ResultsList > div`,
			`#mosaic-provider-jobcards .job_seen_beacon`,
		},
		Title: []string{
			`h2.jobTitle span`,
			`h2.jobTitle a span`,
			`a.jcs-JobTitle span`,
			`.jobTitle`,
		},
		Company: []string{
			`span[data-testid="company-name"]`,
			`.companyName`,
			`.company_location .companyName`,
		},
		Location: []string{
			`div[data-testid="text-location"]`,
			`.companyLocation`,
			`.company_location .companyLocation`,
		},
		Salary: []string{
			`div[data-testid="attribute_snippet_testid"]`,
			`.salary-snippet`,
			`.salaryOnly`,
		},
		Description: []string{
			`div.job-snippet`,
			`.job-snippet`,
			`.job-snippet-container`,
		},
		JobURL: []string{
			`h2.jobTitle a`,
			`a.jcs-JobTitle`,
			`.jobTitle a`,
		},
		DatePosted: []string{
			`span.date`,
			`.date`,
			`.new`,
		},
		JobType: []string{
			`div[data-testid="job-type-info"]`,
			`.metadata .attribute_snippet`,
		},
		NextPage: []string{
			`a[data-testid="pagination-page-next"]`,
			`a.pn`,
			`a[aria-label="Next"]`,
			`a.np`,
		},
		ConsentButtons: []string{
			`#onetrust-accept-btn-handler`,
			`#accept-cookie-notification`,
			`button[data-testid="cookie-consent-accept"]`,
			`.accept-cookies-button`,
			`button.cookie-consent-accept`,
		},
		ConsentOverlays: []string{
			`#onetrust-banner-sdk`,
			`.overlay`, `.modal`, `.dialog`, `.popup`, `.consent`, `.cookie`,
		},
		ChallengeMarkers: []string{
			`#challenge-running`,
			`#cf-challenge-running`,
			`.cf-browser-verification`,
			`.cf-im-under-attack`,
			`div.cf-wrapper`,
			`#captcha`,
			`.g-recaptcha`,
		},
		ChallengeTitles: []string{
			"just a moment",
			"attention required",
			"checking your browser",
			"ddos protection",
		},
	}
}

// Load returns the default set with any fields present in the YAML file at
// path replacing the defaults. Only non-empty keys override, so an overlay
// can patch a single selector list.
func Load(path string) (Set, error) {
	set := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("failed to read selectors file: %w", err)
	}

	var overlay Set
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return set, fmt.Errorf("failed to parse selectors file: %w", err)
	}

	set.merge(overlay)
	return set, nil
}

func (s *Set) merge(o Set) {
	for _, f := range []struct {
		dst *[]string
		src []string
	}{
		{&s.JobCards, o.JobCards},
		{&s.Title, o.Title},
		{&s.Company, o.Company},
		{&s.Location, o.Location},
		{&s.Salary, o.Salary},
		{&s.Description, o.Description},
		{&s.JobURL, o.JobURL},
		{&s.DatePosted, o.DatePosted},
		{&s.JobType, o.JobType},
		{&s.NextPage, o.NextPage},
		{&s.ConsentButtons, o.ConsentButtons},
		{&s.ConsentOverlays, o.ConsentOverlays},
		{&s.ChallengeMarkers, o.ChallengeMarkers},
		{&s.ChallengeTitles, o.ChallengeTitles},
	} {
		if len(f.src) > 0 {
			*f.dst = f.src
		}
	}
}
