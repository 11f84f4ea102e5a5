// Package export writes a run's results to CSV and/or JSON files under the
// output directory, one pair per run.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbrandt/indeedhunt/internal/types"
)

// timestampLayout sorts lexically, so output files list in run order.
const timestampLayout = "20060102_150405"

var slugPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Slug collapses runs of non-alphanumeric characters to single underscores,
// keeping filenames free of whitespace and path separators.
func Slug(s string) string {
	slug := slugPattern.ReplaceAllString(s, "_")
	for len(slug) > 0 && slug[0] == '_' {
		slug = slug[1:]
	}
	for len(slug) > 0 && slug[len(slug)-1] == '_' {
		slug = slug[:len(slug)-1]
	}
	return slug
}

// Filename returns the deterministic output name for one run and format.
func Filename(jobTitle, location string, ts time.Time, ext string) string {
	return fmt.Sprintf("indeed_jobs_%s_%s_%s.%s",
		Slug(jobTitle), Slug(location), ts.Format(timestampLayout), ext)
}

// Exporter writes result files into its directory.
type Exporter struct {
	dir string
	log zerolog.Logger
}

// New creates an exporter rooted at dir.
func New(dir string, log zerolog.Logger) *Exporter {
	return &Exporter{
		dir: dir,
		log: log.With().Str("component", "export").Logger(),
	}
}

// Export writes the requested formats and returns the paths written. Each
// format is attempted independently: a CSV failure does not stop the JSON
// write or vice versa, and failures are logged rather than returned.
func (e *Exporter) Export(jobs []types.JobListing, jobTitle, location string, wantCSV, wantJSON bool, now time.Time) []string {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		e.log.Error().Err(err).Str("dir", e.dir).Msg("failed to create output directory")
		return nil
	}

	var written []string
	if wantCSV {
		path := filepath.Join(e.dir, Filename(jobTitle, location, now, "csv"))
		if err := WriteCSV(path, jobs); err != nil {
			e.log.Error().Err(err).Str("path", path).Msg("failed to write CSV")
		} else {
			e.log.Info().Str("path", path).Int("jobs", len(jobs)).Msg("wrote CSV")
			written = append(written, path)
		}
	}
	if wantJSON {
		path := filepath.Join(e.dir, Filename(jobTitle, location, now, "json"))
		if err := WriteJSON(path, jobs); err != nil {
			e.log.Error().Err(err).Str("path", path).Msg("failed to write JSON")
		} else {
			e.log.Info().Str("path", path).Int("jobs", len(jobs)).Msg("wrote JSON")
			written = append(written, path)
		}
	}
	return written
}

// WriteCSV writes a header row in the canonical field order followed by one
// row per listing. Nullable fields render as empty cells.
func WriteCSV(path string, jobs []types.JobListing) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(types.FieldNames)
	for _, j := range jobs {
		if writeErr != nil {
			break
		}
		writeErr = w.Write([]string{
			j.Title, j.Company, j.Location, deref(j.Salary),
			j.Description, j.URL, deref(j.DatePosted), deref(j.JobType), j.JobID,
		})
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if writeErr != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV: %w", writeErr)
	}
	return f.Close()
}

// WriteJSON writes the listings as a JSON array with the same keys as the
// CSV columns. Absent optional fields serialize as null.
func WriteJSON(path string, jobs []types.JobListing) error {
	if jobs == nil {
		jobs = []types.JobListing{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal listings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
