package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format: must be text or json; got %q", c.Log.Format))
	}

	if c.Demo.DownloadDelay < 0 {
		errs = append(errs, fmt.Sprintf("demo.download_delay: must not be negative, got %s", c.Demo.DownloadDelay))
	}
	if c.Demo.ClickRate < 0 {
		errs = append(errs, fmt.Sprintf("demo.click_rate: must not be negative, got %g", c.Demo.ClickRate))
	}
	if c.Demo.Clicks < 0 {
		errs = append(errs, fmt.Sprintf("demo.clicks: must not be negative, got %d", c.Demo.Clicks))
	}
	if c.Demo.Duration < 0 {
		errs = append(errs, fmt.Sprintf("demo.duration: must not be negative, got %s", c.Demo.Duration))
	}

	if c.Seed.EmptyCount < 0 {
		errs = append(errs, fmt.Sprintf("seed.empty_count: must not be negative, got %d", c.Seed.EmptyCount))
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path: required when journal is enabled")
	}

	if c.Bus.Buffer < 0 {
		errs = append(errs, fmt.Sprintf("bus.buffer: must not be negative, got %d", c.Bus.Buffer))
	}

	return errs
}
