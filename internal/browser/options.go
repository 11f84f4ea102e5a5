// Package browser provides shared chromedp configuration with anti-bot-detection measures.
package browser

import "github.com/chromedp/chromedp"

// DefaultUserAgent is a realistic Chrome user agent. Indeed sits behind
// Cloudflare, which scores the UA string.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"

// Options returns chromedp allocator options with anti-bot-detection
// measures. All browser instances should use this so the fingerprint stays
// consistent between the scraper and the bottest helper.
func Options(headless bool) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),

		// Prevent navigator.webdriver = true detection. Cloudflare's
		// interstitial checks this first.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),

		chromedp.UserAgent(DefaultUserAgent),
		chromedp.WindowSize(1920, 1080),

		// Stability flags, also needed when running inside a container
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	if headless {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}

	return opts
}
