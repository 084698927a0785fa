package config

import "fmt"

// ValidationError signals a config value that failed its setter's
// validation, or a YAML config key that isn't recognized. It's fatal at
// load time.
type ValidationError struct {
	Option string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration for %q: %v", e.Option, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func errInvalidResizeFactor(f float64) error {
	return fmt.Errorf("thumbnail_resize_factor must be in (0, 1], got %g", f)
}

func errInvalidQuality(q int) error {
	return fmt.Errorf("thumbnail_quality must be 0..100, got %d", q)
}
