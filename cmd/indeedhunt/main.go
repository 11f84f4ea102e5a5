// Command indeedhunt scrapes job listings from Indeed.de search results,
// with a human-in-the-loop fallback for Cloudflare challenges.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cbrandt/indeedhunt/internal/app"
	"github.com/cbrandt/indeedhunt/internal/config"
	"github.com/cbrandt/indeedhunt/internal/cookies"
	"github.com/cbrandt/indeedhunt/internal/scheduler"
	"github.com/cbrandt/indeedhunt/internal/selectors"
	"github.com/cbrandt/indeedhunt/internal/store"
)

func main() {
	// Load .env file if it exists; real environment variables win.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "indeedhunt",
		Short:         "Scrape job listings from Indeed.de",
		Long:          "indeedhunt drives a Chrome instance over the DevTools protocol to collect Indeed.de job listings into CSV/JSON files. Cloudflare challenges are handed to you at the console; saved cookies make them rarer on later runs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	f := cmd.Flags()
	f.String("job-title", "", "job title to search for")
	f.String("location", "", "location to search in")
	f.Int("radius", 0, "search radius in km")
	f.Int("max-pages", 0, "maximum number of result pages to scrape")
	f.Int("results-per-page", 0, "listings requested per page")
	f.Int("timeout", 0, "seconds to wait for listings before challenge handling")
	f.Bool("output-csv", true, "write results to CSV")
	f.Bool("output-json", true, "write results to JSON")
	f.Bool("headless", false, "run the browser headless (challenges cannot be solved by hand)")
	f.String("output-dir", "", "directory for result files")
	f.String("cookie-file", "", "path of the persisted cookie jar")
	f.String("store", "", "sqlite database to record run history (empty disables)")
	f.String("schedule", "", "cron expression for recurring runs (empty runs once)")
	f.String("selectors", "", "YAML file overriding the built-in DOM selectors")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(overridesFromFlags(cmd))
	if err != nil {
		return err
	}

	sel := selectors.Default()
	if cfg.SelectorsFile != "" {
		if sel, err = selectors.Load(cfg.SelectorsFile); err != nil {
			return err
		}
		log.Info().Str("file", cfg.SelectorsFile).Msg("loaded selector overlay")
	}

	cookieStore := cookies.NewStore(cfg.CookieFile)

	var history *store.Store
	if cfg.StoreDB != "" {
		if history, err = store.New(cfg.StoreDB); err != nil {
			return err
		}
		defer history.Close()
		log.Info().Str("db", cfg.StoreDB).Msg("run history enabled")
	}

	log.Info().
		Str("job_title", cfg.JobTitle).
		Str("location", cfg.Location).
		Int("radius_km", cfg.Radius).
		Int("max_pages", cfg.MaxPages).
		Msg("starting")

	a := app.New(cfg, sel, cookieStore, history, os.Stdin, os.Stdout, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule != "" {
		sched := scheduler.New(log)
		if err := sched.Add("indeed scrape", cfg.Schedule, a.Run); err != nil {
			return err
		}
		log.Info().Str("schedule", cfg.Schedule).Msg("running on schedule, Ctrl-C to stop")
		sched.Run(ctx)
		return nil
	}

	return a.Run(ctx)
}

// overridesFromFlags converts only the flags actually set on the command
// line, so unset flags never mask environment values.
func overridesFromFlags(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	f := cmd.Flags()

	strFlags := map[string]**string{
		"job-title":   &o.JobTitle,
		"location":    &o.Location,
		"output-dir":  &o.OutputDir,
		"cookie-file": &o.CookieFile,
		"store":       &o.StoreDB,
		"schedule":    &o.Schedule,
		"selectors":   &o.SelectorsFile,
	}
	for name, dst := range strFlags {
		if f.Changed(name) {
			v, _ := f.GetString(name)
			*dst = &v
		}
	}

	intFlags := map[string]**int{
		"radius":           &o.Radius,
		"max-pages":        &o.MaxPages,
		"results-per-page": &o.ResultsPerPage,
		"timeout":          &o.Timeout,
	}
	for name, dst := range intFlags {
		if f.Changed(name) {
			v, _ := f.GetInt(name)
			*dst = &v
		}
	}

	boolFlags := map[string]**bool{
		"output-csv":  &o.OutputCSV,
		"output-json": &o.OutputJSON,
		"headless":    &o.Headless,
	}
	for name, dst := range boolFlags {
		if f.Changed(name) {
			v, _ := f.GetBool(name)
			*dst = &v
		}
	}

	return o
}
