// Package cookies persists browser cookies between runs so that a solved
// Cloudflare challenge survives process restarts.
package cookies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
)

// Jar is an ordered set of browser cookies as captured from Chrome.
type Jar []*network.Cookie

// storedCookies is the on-disk envelope. The format is an implementation
// detail; only the save/load round-trip is a contract.
type storedCookies struct {
	Cookies    Jar       `json:"cookies"`
	CapturedAt time.Time `json:"captured_at"`
}

// Store reads and writes a cookie jar at a fixed path.
type Store struct {
	path string
}

// NewStore creates a cookie store at the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string { return s.path }

// Load retrieves cookies from disk. An absent, unreadable or corrupt file
// is a cold start: Load returns an empty jar and no error, never a fatal
// condition.
func (s *Store) Load() Jar {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var stored storedCookies
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil
	}

	return stored.Cookies
}

// Save persists cookies to disk. The jar is written to a temp file in the
// same directory and renamed over the target so a crash cannot leave a
// partial file behind.
func (s *Store) Save(jar Jar) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cookie dir: %w", err)
	}

	stored := storedCookies{
		Cookies:    jar,
		CapturedAt: time.Now(),
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cookie file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cookies: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp cookie file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod cookie file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cookie file: %w", err)
	}
	return nil
}

// Clear removes the stored cookies.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
