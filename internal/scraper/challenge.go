package scraper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/cbrandt/indeedhunt/internal/selectors"
)

// ChallengeState classifies what is standing between us and the listings.
type ChallengeState int

const (
	// StateNormal means the listing container is present and unobstructed.
	StateNormal ChallengeState = iota
	// StateConsentDialog means a cookie consent banner is blocking the page.
	StateConsentDialog
	// StateBotChallenge means a Cloudflare or CAPTCHA interstitial is up,
	// or the listings never appeared, which we treat the same way.
	StateBotChallenge
	// StateResolved means the operator confirmed the page is usable again.
	StateResolved
)

func (s ChallengeState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateConsentDialog:
		return "consent_dialog"
	case StateBotChallenge:
		return "bot_challenge"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// ChallengeHandler decides whether a page is blocked and, when automation
// cannot clear it, hands control to a human at the console. There is no
// retry limit and no timeout of its own on the operator: a challenge cannot
// be solved by the program alone. Cancelling the run context is the only
// way to abandon the prompt, which is what bounds scheduled runs.
type ChallengeHandler struct {
	sel  selectors.Set
	in   io.Reader
	out  io.Writer
	save func() error
	log  zerolog.Logger
}

// NewChallengeHandler wires the handler to the operator console. save
// persists the current browser cookies when the operator types "save".
func NewChallengeHandler(sel selectors.Set, in io.Reader, out io.Writer, save func() error, log zerolog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		sel:  sel,
		in:   in,
		out:  out,
		save: save,
		log:  log.With().Str("component", "challenge").Logger(),
	}
}

// Classify inspects a rendered page snapshot and reports its state. A page
// with neither listings nor a recognizable challenge signature is treated
// as a bot challenge: something unknown is in the way and only the operator
// can tell what.
func (h *ChallengeHandler) Classify(html string) ChallengeState {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		h.log.Warn().Err(err).Msg("could not parse page, assuming challenge")
		return StateBotChallenge
	}

	title := strings.ToLower(doc.Find("title").First().Text())
	for _, sig := range h.sel.ChallengeTitles {
		if strings.Contains(title, sig) {
			return StateBotChallenge
		}
	}
	for _, marker := range h.sel.ChallengeMarkers {
		if doc.Find(marker).Length() > 0 {
			return StateBotChallenge
		}
	}
	for _, overlay := range h.sel.ConsentOverlays {
		if doc.Find(overlay).Length() > 0 {
			return StateConsentDialog
		}
	}
	for _, cards := range h.sel.JobCards {
		if doc.Find(cards).Length() > 0 {
			return StateNormal
		}
	}
	return StateBotChallenge
}

// Await blocks on the operator console until the challenge is resolved or
// ctx is cancelled. Protocol: "done" resolves, "save" persists the current
// cookies and keeps prompting, anything else re-prompts. Cancellation
// releases the caller so the browser session can be torn down even though
// the underlying console read cannot be interrupted.
func (h *ChallengeHandler) Await(ctx context.Context) error {
	banner := strings.Repeat("=", 80)
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, banner)
	fmt.Fprintln(h.out, "MANUAL NAVIGATION MODE")
	fmt.Fprintln(h.out, "1. If you see a CAPTCHA or Cloudflare challenge, please solve it in the browser.")
	fmt.Fprintln(h.out, "2. Navigate to the job search results page if needed.")
	fmt.Fprintln(h.out, "3. Once you can see the job listings, type 'done' and press Enter.")
	fmt.Fprintln(h.out, "4. To save cookies for future runs, type 'save' and press Enter.")
	fmt.Fprintln(h.out, banner)
	fmt.Fprintln(h.out)

	lines := make(chan string)
	closed := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(h.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		closed <- scanner.Err()
	}()

	for {
		fmt.Fprint(h.out, "Command (done/save): ")

		var line string
		select {
		case <-ctx.Done():
			return fmt.Errorf("challenge not resolved: %w", ctx.Err())
		case err := <-closed:
			if err != nil {
				return fmt.Errorf("failed to read operator input: %w", err)
			}
			return errors.New("operator input closed before challenge was resolved")
		case line = <-lines:
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "done":
			h.log.Info().Msg("operator resolved challenge")
			return nil
		case "save":
			if err := h.save(); err != nil {
				h.log.Warn().Err(err).Msg("failed to save cookies")
				fmt.Fprintln(h.out, "Could not save cookies, see log.")
			} else {
				fmt.Fprintln(h.out, "Cookies saved.")
			}
		default:
			// Unknown input, re-prompt.
		}
	}
}
