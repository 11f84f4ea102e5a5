package types

// JobListing represents one job posting scraped from a results page.
// Optional fields are nil when the listing card does not carry them.
type JobListing struct {
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Salary      *string `json:"salary"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	DatePosted  *string `json:"date_posted"`
	JobType     *string `json:"job_type"`
	JobID       string  `json:"job_id"`
}

// Key returns the identity used for upserts into the history store:
// Indeed's jk parameter when present, otherwise the listing URL.
func (j JobListing) Key() string {
	if j.JobID != "" {
		return j.JobID
	}
	return j.URL
}

// FieldNames is the canonical column order for CSV output. JSON objects
// carry the same keys.
var FieldNames = []string{
	"title", "company", "location", "salary",
	"description", "url", "date_posted", "job_type", "job_id",
}
