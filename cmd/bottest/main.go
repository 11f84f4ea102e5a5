// Command bottest opens bot.sannysoft.com in a browser using the same
// stealth options as the scraper, so the fingerprint Cloudflare sees can be
// audited before a real run.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/cbrandt/indeedhunt/internal/browser"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("fingerprint audit failed")
	}
}

func run(log zerolog.Logger) error {
	log.Info().Msg("opening bot.sannysoft.com with the scraper's browser options")
	log.Info().Msg("red rows on that page mean Indeed's Cloudflare will likely flag us too")

	// Non-headless so the result table can be inspected.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), browser.Options(false)...)
	defer cancelAlloc()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate("https://bot.sannysoft.com"),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to load fingerprint page: %w", err)
	}

	fmt.Println("Press Enter to close the browser...")
	fmt.Scanln()
	return nil
}
