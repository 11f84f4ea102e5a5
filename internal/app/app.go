// Package app wires the browser session, challenge handling, extraction and
// export into one linear run.
package app

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbrandt/indeedhunt/internal/config"
	"github.com/cbrandt/indeedhunt/internal/cookies"
	"github.com/cbrandt/indeedhunt/internal/export"
	"github.com/cbrandt/indeedhunt/internal/extract"
	"github.com/cbrandt/indeedhunt/internal/scraper"
	"github.com/cbrandt/indeedhunt/internal/selectors"
	"github.com/cbrandt/indeedhunt/internal/store"
	"github.com/cbrandt/indeedhunt/internal/types"
)

// defaultPageDelay spaces out page loads so pagination does not look like a
// burst of automated requests.
const defaultPageDelay = 3 * time.Second

// pageSource is the slice of the browser session the page loop needs.
// *scraper.Session satisfies it; tests substitute a fake.
type pageSource interface {
	WaitForResults(timeout time.Duration) bool
	NextPage() bool
	HTML() (string, error)
	DismissConsent() bool
}

// App drives one scrape from navigation to export.
type App struct {
	cfg       config.SearchConfig
	sel       selectors.Set
	cookies   *cookies.Store
	history   *store.Store // nil when the store is disabled
	in        io.Reader
	out       io.Writer
	log       zerolog.Logger
	pageDelay time.Duration
}

// New creates an orchestrator. in and out are the operator console used
// during challenge handling; history may be nil.
func New(cfg config.SearchConfig, sel selectors.Set, cookieStore *cookies.Store, history *store.Store, in io.Reader, out io.Writer, log zerolog.Logger) *App {
	return &App{
		cfg:       cfg,
		sel:       sel,
		cookies:   cookieStore,
		history:   history,
		in:        in,
		out:       out,
		log:       log.With().Str("component", "app").Logger(),
		pageDelay: defaultPageDelay,
	}
}

// Run performs one complete scrape. The browser session is released on
// every exit path. Partial results still get exported: only a failed launch
// or configuration problem makes the process exit non-zero, and both happen
// before this point or at the very top of Run.
func (a *App) Run(ctx context.Context) error {
	started := time.Now()

	session, err := scraper.NewSession(ctx, a.cfg.Headless, a.sel, a.log)
	if err != nil {
		return err
	}
	defer session.Close()

	saveCookies := func() error {
		jar, err := session.Cookies()
		if err != nil {
			return err
		}
		return a.cookies.Save(jar)
	}
	handler := scraper.NewChallengeHandler(a.sel, a.in, a.out, saveCookies, a.log)
	extractor := extract.New(a.sel, a.log)

	if jar := a.cookies.Load(); len(jar) > 0 {
		a.log.Info().Int("cookies", len(jar)).Msg("injecting saved cookies")
		if err := session.SetCookies(jar); err != nil {
			a.log.Warn().Err(err).Msg("failed to inject cookies, continuing cold")
		}
	}

	url := scraper.SearchURL(a.cfg.JobTitle, a.cfg.Location, a.cfg.Radius, a.cfg.ResultsPerPage, 0)
	if err := session.Navigate(url); err != nil {
		return err
	}

	results, pages := a.collect(ctx, session, handler, extractor)
	a.log.Info().Int("jobs", len(results)).Int("pages", pages).Msg("scrape finished")

	exporter := export.New(a.cfg.OutputDir, a.log)
	exporter.Export(results, a.cfg.JobTitle, a.cfg.Location, a.cfg.OutputCSV, a.cfg.OutputJSON, time.Now())

	if err := saveCookies(); err != nil {
		a.log.Warn().Err(err).Msg("failed to save cookies at end of run")
	}

	if a.history != nil {
		if err := a.history.RecordRun(a.cfg.JobTitle, a.cfg.Location, pages, results, started, time.Now()); err != nil {
			a.log.Warn().Err(err).Msg("failed to record run in history store")
		}
	}
	return nil
}

// collect walks the result pages, accumulating listings in traversal order.
// The loop runs at most MaxPages iterations regardless of how many pages
// the site reports. Any page-level failure ends the loop with whatever has
// been collected so far; nothing here is fatal to the run.
func (a *App) collect(ctx context.Context, src pageSource, handler *scraper.ChallengeHandler, extractor *extract.Extractor) ([]types.JobListing, int) {
	timeout := time.Duration(a.cfg.Timeout) * time.Second
	var results []types.JobListing
	pages := 0

	for page := 0; page < a.cfg.MaxPages; page++ {
		if ctx.Err() != nil {
			a.log.Info().Msg("run cancelled, stopping")
			break
		}
		if page > 0 {
			time.Sleep(a.pageDelay)
			// A consent banner can appear mid-run and sit over the
			// pagination control, so try a scripted accept first.
			if src.DismissConsent() {
				a.log.Info().Msg("dismissed consent banner before pagination")
			}
			if !src.NextPage() {
				a.log.Info().Msg("no more pages available")
				break
			}
		}

		if !src.WaitForResults(timeout) {
			if err := a.resolveChallenge(ctx, src, handler, timeout); err != nil {
				a.log.Error().Err(err).Int("page", page+1).Msg("challenge not resolved, stopping")
				break
			}
		}

		html, err := src.HTML()
		if err != nil {
			a.log.Error().Err(err).Int("page", page+1).Msg("failed to snapshot page, stopping")
			break
		}
		jobs, err := extractor.Listings(html)
		if err != nil {
			a.log.Error().Err(err).Int("page", page+1).Msg("failed to parse page, stopping")
			break
		}
		if len(jobs) == 0 {
			a.log.Warn().Int("page", page+1).Msg("no jobs on page, stopping")
			break
		}

		results = append(results, jobs...)
		pages++
		a.log.Info().Int("page", page+1).Int("jobs", len(jobs)).Msg("extracted page")
	}

	return results, pages
}

// resolveChallenge runs the challenge state machine after a results timeout:
// consent dialogs get a scripted accept first, everything unresolved falls
// through to the operator prompt.
func (a *App) resolveChallenge(ctx context.Context, src pageSource, handler *scraper.ChallengeHandler, timeout time.Duration) error {
	html, err := src.HTML()
	if err != nil {
		return err
	}

	state := handler.Classify(html)
	a.log.Info().Stringer("state", state).Msg("page classified")

	switch state {
	case scraper.StateNormal:
		return nil
	case scraper.StateConsentDialog:
		if src.DismissConsent() && src.WaitForResults(timeout) {
			return nil
		}
		// Scripted accept did not clear it, escalate to the operator.
		return handler.Await(ctx)
	default:
		return handler.Await(ctx)
	}
}
