package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/cbrandt/indeedhunt/internal/browser"
	"github.com/cbrandt/indeedhunt/internal/cookies"
	"github.com/cbrandt/indeedhunt/internal/selectors"
)

// pollInterval is how often WaitForResults re-checks the page for the
// listing container.
const pollInterval = 500 * time.Millisecond

// Session exclusively owns one Chrome instance for the lifetime of a run.
// Close must be called on every exit path; the orchestrator defers it right
// after NewSession succeeds.
type Session struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	sel           selectors.Set
	log           zerolog.Logger
}

// NewSession launches Chrome with the shared stealth options. A launch
// failure is fatal to the run, there is nothing to scrape without a browser.
func NewSession(ctx context.Context, headless bool, sel selectors.Set, log zerolog.Logger) (*Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browser.Options(headless)...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Run with no actions forces the browser to start now, so launch
	// errors surface here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Session{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		sel:           sel,
		log:           log.With().Str("component", "session").Logger(),
	}, nil
}

// Close releases the browser and its allocator.
func (s *Session) Close() {
	s.cancelBrowser()
	s.cancelAlloc()
}

// Navigate issues a page load and returns without waiting for the target
// elements; pair it with WaitForResults.
func (s *Session) Navigate(url string) error {
	s.log.Info().Str("url", url).Msg("navigating")
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitForResults polls until a listing-card selector matches or the timeout
// elapses. A timeout is not an error: it is the trigger for challenge
// detection, so the caller gets a plain false.
func (s *Session) WaitForResults(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range s.sel.JobCards {
			var n int
			js := fmt.Sprintf(`document.querySelectorAll(%q).length`, sel)
			if err := chromedp.Run(s.ctx, chromedp.Evaluate(js, &n)); err == nil && n > 0 {
				s.log.Debug().Str("selector", sel).Int("cards", n).Msg("found job cards")
				return true
			}
		}
		if time.Now().After(deadline) {
			s.log.Warn().Dur("timeout", timeout).Msg("no job cards before timeout")
			return false
		}
		select {
		case <-s.ctx.Done():
			return false
		case <-time.After(pollInterval):
		}
	}
}

// clickJS scrolls an element into view and clicks it through JavaScript.
// Indeed's pagination link is sometimes covered by overlays, so a scripted
// click is more reliable than a synthesized mouse event.
const clickJS = `(sel => {
	const el = document.querySelector(sel);
	if (!el) return false;
	el.scrollIntoView(true);
	el.click();
	return true;
})(%q)`

// NextPage activates the pagination-next control. It returns false when no
// control is present, which signals the end of the result set.
func (s *Session) NextPage() bool {
	for _, sel := range s.sel.NextPage {
		var clicked bool
		js := fmt.Sprintf(clickJS, sel)
		if err := chromedp.Run(s.ctx, chromedp.Evaluate(js, &clicked)); err == nil && clicked {
			s.log.Info().Str("selector", sel).Msg("clicked next page")
			return true
		}
	}
	return false
}

// acceptWords are button labels that dismiss a consent banner. Indeed.de
// serves both German and English variants.
const consentTextJS = `(words => {
	for (const b of document.querySelectorAll('button')) {
		const t = (b.textContent || '').trim().toLowerCase();
		if (words.some(w => t === w || t.startsWith(w + ' '))) {
			b.scrollIntoView(true);
			b.click();
			return true;
		}
	}
	return false;
})(["alle akzeptieren", "akzeptieren", "accept all", "i accept", "accept", "zustimmen", "agree", "ok", "got it"])`

// DismissConsent attempts a scripted accept-click on a cookie consent
// dialog. Returns true if a button was clicked.
func (s *Session) DismissConsent() bool {
	for _, sel := range s.sel.ConsentButtons {
		var clicked bool
		js := fmt.Sprintf(clickJS, sel)
		if err := chromedp.Run(s.ctx, chromedp.Evaluate(js, &clicked)); err == nil && clicked {
			s.log.Info().Str("selector", sel).Msg("accepted cookie consent")
			return true
		}
	}

	// Fall back to matching button text.
	var clicked bool
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(consentTextJS, &clicked)); err == nil && clicked {
		s.log.Info().Msg("accepted cookie consent via button text")
		return true
	}
	return false
}

// HTML returns a snapshot of the rendered document. Extraction runs against
// this snapshot so DOM queries never mutate browser state.
func (s *Session) HTML() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to capture page HTML: %w", err)
	}
	return html, nil
}

// Cookies captures all cookies from the browser.
func (s *Session) Cookies() (cookies.Jar, error) {
	var jar cookies.Jar
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		jar, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}
	return jar, nil
}

// SetCookies injects a saved jar into the browser before navigation, so a
// previously solved challenge carries over into this run.
func (s *Session) SetCookies(jar cookies.Jar) error {
	return chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range jar {
			err := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly).
				WithSameSite(c.SameSite).
				Do(ctx)
			if err != nil {
				s.log.Warn().Str("cookie", c.Name).Err(err).Msg("failed to set cookie")
			}
		}
		return nil
	}))
}
