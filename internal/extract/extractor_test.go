package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbrandt/indeedhunt/internal/selectors"
)

// card builds one listing-card fragment in the current Indeed markup.
func card(title, company, href, extra string) string {
	var b strings.Builder
	b.WriteString(`<div data-testid="jobCard">`)
	if title != "" {
		fmt.Fprintf(&b, `<h2 class="jobTitle"><a href="%s"><span>%s</span></a></h2>`, href, title)
	} else if href != "" {
		fmt.Fprintf(&b, `<h2 class="jobTitle"><a href="%s"></a></h2>`, href)
	}
	if company != "" {
		fmt.Fprintf(&b, `<span data-testid="company-name">%s</span>`, company)
	}
	b.WriteString(extra)
	b.WriteString(`</div>`)
	return b.String()
}

func page(cards ...string) string {
	return `<html><body><div id="results">` + strings.Join(cards, "") + `</div></body></html>`
}

func newExtractor() *Extractor {
	return New(selectors.Default(), zerolog.Nop())
}

func TestListings_FullCard(t *testing.T) {
	extra := `<div data-testid="text-location">Berlin</div>` +
		`<div data-testid="attribute_snippet_testid">55.000 € pro Jahr</div>` +
		`<div class="job-snippet">We build things.</div>` +
		`<span class="date">vor 3 Tagen</span>`
	html := page(card("Software Engineer", "ACME GmbH", "/rc/clk?jk=abc123&from=web", extra))

	jobs, err := newExtractor().Listings(html)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "Software Engineer", job.Title)
	assert.Equal(t, "ACME GmbH", job.Company)
	assert.Equal(t, "Berlin", job.Location)
	require.NotNil(t, job.Salary)
	assert.Equal(t, "55.000 € pro Jahr", *job.Salary)
	assert.Equal(t, "We build things.", job.Description)
	assert.Equal(t, "https://de.indeed.com/rc/clk?jk=abc123&from=web", job.URL)
	require.NotNil(t, job.DatePosted)
	assert.Equal(t, "vor 3 Tagen", *job.DatePosted)
	assert.Nil(t, job.JobType)
	assert.Equal(t, "abc123", job.JobID)
}

func TestListings_SkipsCardsMissingRequiredFields(t *testing.T) {
	html := page(
		card("Engineer A", "ACME", "/viewjob?jk=a1", ""),
		card("", "NoTitle AG", "/viewjob?jk=a2", ""),        // missing title
		card("Engineer C", "", "/viewjob?jk=a3", ""),        // missing company
		card("Engineer D", "NoLink KG", "", ""),             // missing url
		card("Engineer E", "ACME", "/viewjob?jk=a5", ""),
	)

	jobs, err := newExtractor().Listings(html)
	require.NoError(t, err)

	// N cards, M missing a required field: exactly N-M records.
	require.Len(t, jobs, 2)
	assert.Equal(t, "Engineer A", jobs[0].Title)
	assert.Equal(t, "Engineer E", jobs[1].Title)
}

func TestListings_DocumentOrderPreserved(t *testing.T) {
	html := page(
		card("First", "A", "/viewjob?jk=1", ""),
		card("Second", "B", "/viewjob?jk=2", ""),
		card("Third", "C", "/viewjob?jk=3", ""),
	)

	jobs, err := newExtractor().Listings(html)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{jobs[0].JobID, jobs[1].JobID, jobs[2].JobID})
}

func TestListings_OptionalFieldsNilWhenAbsent(t *testing.T) {
	html := page(card("Engineer", "ACME", "/viewjob?jk=x", ""))

	jobs, err := newExtractor().Listings(html)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Nil(t, jobs[0].Salary)
	assert.Nil(t, jobs[0].DatePosted)
	assert.Nil(t, jobs[0].JobType)
	assert.Empty(t, jobs[0].Location)
}

func TestListings_FallbackCardSelector(t *testing.T) {
	// Old mosaic markup, no data-testid cards.
	html := `<html><body><div id="mosaic-provider-jobcards">
		<div class="job_seen_beacon">
			<h2 class="jobTitle"><a href="/viewjob?jk=old1"><span>Legacy Role</span></a></h2>
			<span class="companyName">Altbau AG</span>
		</div>
	</div></body></html>`

	jobs, err := newExtractor().Listings(html)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Legacy Role", jobs[0].Title)
	assert.Equal(t, "Altbau AG", jobs[0].Company)
}

func TestListings_AbsoluteURLKept(t *testing.T) {
	html := page(card("Engineer", "ACME", "https://example.com/job?jk=z9", ""))

	jobs, err := newExtractor().Listings(html)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://example.com/job?jk=z9", jobs[0].URL)
	assert.Equal(t, "z9", jobs[0].JobID)
}

func TestListings_NoCards(t *testing.T) {
	jobs, err := newExtractor().Listings(`<html><body><p>empty</p></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
