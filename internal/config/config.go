// Package config assembles the search configuration from built-in defaults,
// environment variables (optionally loaded from a .env file by the caller)
// and CLI flag overrides, with CLI taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error reports configuration that cannot be used. It is always fatal and
// is raised before the browser launches.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Key, e.Reason)
}

// SearchConfig holds everything a single run needs. It is immutable after
// Load returns.
type SearchConfig struct {
	JobTitle       string `validate:"required"`
	Location       string `validate:"required"`
	Radius         int    `validate:"gte=0"`
	ResultsPerPage int    `validate:"gt=0"`
	MaxPages       int    `validate:"gt=0"`
	OutputCSV      bool
	OutputJSON     bool
	Timeout        int `validate:"gt=0"` // seconds to wait for the listing container
	Headless       bool

	CookieFile    string
	OutputDir     string
	StoreDB       string // sqlite history database; empty disables the store
	Schedule      string // cron expression; empty means one-shot run
	SelectorsFile string // optional YAML selector overlay
}

// Overrides carries CLI flag values. Nil fields were not set on the command
// line and leave the environment/default value untouched.
type Overrides struct {
	JobTitle       *string
	Location       *string
	Radius         *int
	ResultsPerPage *int
	MaxPages       *int
	OutputCSV      *bool
	OutputJSON     *bool
	Timeout        *int
	Headless       *bool
	CookieFile     *string
	OutputDir      *string
	StoreDB        *string
	Schedule       *string
	SelectorsFile  *string
}

// Default returns the built-in configuration, matching the documented
// defaults for an Indeed.de search.
func Default() SearchConfig {
	return SearchConfig{
		JobTitle:       "software engineer",
		Location:       "Berlin",
		Radius:         25,
		ResultsPerPage: 15,
		MaxPages:       5,
		OutputCSV:      true,
		OutputJSON:     true,
		Timeout:        10,
		Headless:       false,
		CookieFile:     "indeed_cookies.json",
		OutputDir:      "output",
	}
}

// Load merges defaults, environment variables and CLI overrides and
// validates the result. Callers that want .env support run godotenv.Load
// before this.
func Load(o Overrides) (SearchConfig, error) {
	cfg, err := fromEnv(Default())
	if err != nil {
		return SearchConfig{}, err
	}
	cfg.apply(o)
	if err := validate(cfg); err != nil {
		return SearchConfig{}, err
	}
	return cfg, nil
}

func fromEnv(cfg SearchConfig) (SearchConfig, error) {
	var err error
	if v := envString("JOB_TITLE"); v != "" {
		cfg.JobTitle = v
	}
	if v := envString("LOCATION"); v != "" {
		cfg.Location = v
	}
	if cfg.Radius, err = envInt("RADIUS", cfg.Radius); err != nil {
		return cfg, err
	}
	if cfg.ResultsPerPage, err = envInt("RESULTS_PER_PAGE", cfg.ResultsPerPage); err != nil {
		return cfg, err
	}
	if cfg.MaxPages, err = envInt("MAX_PAGES", cfg.MaxPages); err != nil {
		return cfg, err
	}
	if cfg.Timeout, err = envInt("TIMEOUT", cfg.Timeout); err != nil {
		return cfg, err
	}
	cfg.OutputCSV = envBool("OUTPUT_CSV", cfg.OutputCSV)
	cfg.OutputJSON = envBool("OUTPUT_JSON", cfg.OutputJSON)
	cfg.Headless = envBool("HEADLESS", cfg.Headless)
	if v := envString("COOKIE_FILE"); v != "" {
		cfg.CookieFile = v
	}
	if v := envString("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := envString("STORE_DB"); v != "" {
		cfg.StoreDB = v
	}
	if v := envString("SCHEDULE"); v != "" {
		cfg.Schedule = v
	}
	if v := envString("SELECTORS_FILE"); v != "" {
		cfg.SelectorsFile = v
	}
	return cfg, nil
}

func (c *SearchConfig) apply(o Overrides) {
	if o.JobTitle != nil {
		c.JobTitle = *o.JobTitle
	}
	if o.Location != nil {
		c.Location = *o.Location
	}
	if o.Radius != nil {
		c.Radius = *o.Radius
	}
	if o.ResultsPerPage != nil {
		c.ResultsPerPage = *o.ResultsPerPage
	}
	if o.MaxPages != nil {
		c.MaxPages = *o.MaxPages
	}
	if o.OutputCSV != nil {
		c.OutputCSV = *o.OutputCSV
	}
	if o.OutputJSON != nil {
		c.OutputJSON = *o.OutputJSON
	}
	if o.Timeout != nil {
		c.Timeout = *o.Timeout
	}
	if o.Headless != nil {
		c.Headless = *o.Headless
	}
	if o.CookieFile != nil {
		c.CookieFile = *o.CookieFile
	}
	if o.OutputDir != nil {
		c.OutputDir = *o.OutputDir
	}
	if o.StoreDB != nil {
		c.StoreDB = *o.StoreDB
	}
	if o.Schedule != nil {
		c.Schedule = *o.Schedule
	}
	if o.SelectorsFile != nil {
		c.SelectorsFile = *o.SelectorsFile
	}
}

func validate(cfg SearchConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &Error{
				Key:    errs[0].Field(),
				Reason: fmt.Sprintf("failed %q constraint", errs[0].Tag()),
			}
		}
		return &Error{Key: "config", Reason: err.Error()}
	}
	return nil
}

// cleanValue strips trailing inline comments from an environment value,
// so RADIUS=25 # in km parses as 25.
func cleanValue(v string) string {
	if i := strings.Index(v, "#"); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

func envString(key string) string {
	return cleanValue(os.Getenv(key))
}

func envInt(key string, def int) (int, error) {
	v := envString(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &Error{Key: key, Reason: fmt.Sprintf("not an integer: %q", v)}
	}
	return n, nil
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(envString(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}
