package scraper

import (
	"fmt"
	"strings"
)

// BaseURL is the Indeed.de job search endpoint. Search filters go in the
// query string rather than through UI interaction, which keeps the page
// count of browser round-trips down.
const BaseURL = "https://de.indeed.com/jobs"

// SearchURL builds an Indeed.de results URL for the given search. start is
// the zero-based result offset and is omitted when 0. Pagination normally
// happens by clicking the next control in the live page; the offset form is
// Indeed's own page-addressing scheme and lets a page be loaded directly,
// e.g. to resume after a challenge.
func SearchURL(jobTitle, location string, radius, limit, start int) string {
	q := strings.ReplaceAll(jobTitle, " ", "+")
	l := strings.ReplaceAll(location, " ", "+")

	url := fmt.Sprintf("%s?q=%s&l=%s&radius=%d&limit=%d", BaseURL, q, l, radius, limit)
	if start > 0 {
		url += fmt.Sprintf("&start=%d", start)
	}
	return url
}
