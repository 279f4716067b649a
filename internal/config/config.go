package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Site
	SiteTitle      string
	SiteTitleShort string
	BaseURL        string

	// Directories
	ContentDir string
	OutputDir  string

	// Numbering
	SectionTag       string
	SubsectionTag    string
	StrictReferences bool

	// Build
	BuildWorkers int
	ExcerptWords int

	// Annotation API
	APIKey         string
	MaxUploadBytes int64

	// Dev server
	WatchDebounce time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		SiteTitle:      envOr("SITE_TITLE", "Cryptography Research"),
		SiteTitleShort: envOr("SITE_TITLE_SHORT", "Crypto Research"),
		BaseURL:        envOr("BASE_URL", "/"),

		ContentDir: envOr("CONTENT_DIR", "content"),
		OutputDir:  envOr("OUTPUT_DIR", "public"),

		SectionTag:       envOr("SECTION_TAG", "h2"),
		SubsectionTag:    envOr("SUBSECTION_TAG", "h3"),
		StrictReferences: envBool("STRICT_REFERENCES", true),

		BuildWorkers: envInt("BUILD_WORKERS", 4),
		ExcerptWords: envInt("EXCERPT_WORDS", 40),

		APIKey:         os.Getenv("LABSITE_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 5242880), // 5MB

		WatchDebounce: envDuration("WATCH_DEBOUNCE", 300*time.Millisecond),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.BuildWorkers <= 0 {
		cfg.BuildWorkers = 4
	}
	if cfg.ExcerptWords <= 0 {
		cfg.ExcerptWords = 40
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5242880
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 300 * time.Millisecond
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("CONTENT_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.SectionTag == c.SubsectionTag {
		return fmt.Errorf("SECTION_TAG and SUBSECTION_TAG must differ (both %q)", c.SectionTag)
	}
	abs, err := filepath.Abs(c.ContentDir)
	if err != nil {
		return fmt.Errorf("resolve CONTENT_DIR: %w", err)
	}
	out, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return fmt.Errorf("resolve OUTPUT_DIR: %w", err)
	}
	if abs == out {
		return fmt.Errorf("OUTPUT_DIR must not be the content directory")
	}
	return nil
}

// Content layout below ContentDir.
func (c Config) PostsDir() string       { return filepath.Join(c.ContentDir, "posts") }
func (c Config) BountiesDir() string    { return filepath.Join(c.ContentDir, "bounties") }
func (c Config) LegacyDir() string      { return filepath.Join(c.ContentDir, "legacy") }
func (c Config) DataDir() string        { return filepath.Join(c.ContentDir, "data") }
func (c Config) StaticDir() string      { return filepath.Join(c.ContentDir, "static") }
func (c Config) ReferencesFile() string { return filepath.Join(c.DataDir(), "references.yaml") }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
