package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RootConfig is created once at startup from CLI + YAML. It owns
// defaults for every date- and group-level option, plus root-only settings
// like the project path, database path, and worker/error-budget tuning.
type RootConfig struct {
	mu sync.RWMutex

	groupOptions
	dateOptions

	project     string
	database    option[string]
	logFile     option[string]
	logLevel    option[string]
	workers     option[int]
	errorBudget option[int]
	sample      option[Sample]
	dateFormat  option[string]

	includeDates option[StringSet]
	excludeDates option[StringSet]

	avgPhotosPerDate option[int]
}

// NewRootConfig creates a root config for the given project directory, with
// every option set to its documented default.
func NewRootConfig(project string) (*RootConfig, error) {
	if project == "" {
		return nil, fmt.Errorf("project path is required")
	}
	abs, err := filepath.Abs(project)
	if err != nil {
		return nil, fmt.Errorf("invalid project path %q: %w", project, err)
	}

	r := &RootConfig{
		groupOptions: defaultGroupOptions(),
		dateOptions:  defaultDateOptions(),
		project:      abs,
	}
	r.database.set(filepath.Join(abs, "tlmerge.db"))
	r.logFile.set("")
	r.logLevel.set("info")
	r.workers.set(4)
	r.errorBudget.set(5)
	r.sample.set(Sample{})
	r.dateFormat.set("%Y-%m-%d")
	r.includeDates.set(NewStringSet())
	r.excludeDates.set(NewStringSet())
	r.avgPhotosPerDate.set(50)
	return r, nil
}

func (r *RootConfig) Project() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.project
}

func (r *RootConfig) Database() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.database.value
}

func (r *RootConfig) SetDatabase(path string) error {
	if path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.database.set(path)
	return nil
}

func (r *RootConfig) LogFile() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logFile.value
}

func (r *RootConfig) SetLogFile(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logFile.set(path)
}

func (r *RootConfig) LogLevel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logLevel.value
}

func (r *RootConfig) SetLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error", "silent":
		r.mu.Lock()
		defer r.mu.Unlock()
		r.logLevel.set(level)
		return nil
	default:
		return fmt.Errorf("invalid log level %q", level)
	}
}

func (r *RootConfig) Workers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workers.value
}

func (r *RootConfig) SetWorkers(n int) error {
	if n < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers.set(n)
	return nil
}

func (r *RootConfig) ErrorBudget() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errorBudget.value
}

func (r *RootConfig) SetErrorBudget(n int) error {
	if n < 0 {
		return fmt.Errorf("max_processing_errors must be >= 0, got %d", n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorBudget.set(n)
	return nil
}

func (r *RootConfig) Sample() Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sample.value
}

func (r *RootConfig) SetSample(raw string) error {
	s, err := ParseSample(raw)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sample.set(s)
	return nil
}

func (r *RootConfig) DateFormat() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dateFormat.value
}

func (r *RootConfig) SetDateFormat(raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dateFormat.set(ProcessDateFormat(raw))
}

func (r *RootConfig) AvgPhotosPerDate() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.avgPhotosPerDate.value
}

func (r *RootConfig) SetAvgPhotosPerDate(n int) error {
	if n < 1 {
		return fmt.Errorf("avg_photos_per_date must be >= 1, got %d", n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.avgPhotosPerDate.set(n)
	return nil
}

func (r *RootConfig) IncludeDates() StringSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.includeDates.value
}

func (r *RootConfig) ExcludeDates() StringSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.excludeDates.value
}

func (r *RootConfig) AddIncludeDates(dates ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.includeDates.set(r.includeDates.value.Add(dates...))
}

func (r *RootConfig) AddExcludeDates(dates ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.excludeDates.set(r.excludeDates.value.Add(dates...))
}

// --- root-level accessors/setters for the shared date/group options ---
// These both set the root's own default (used by any child that doesn't
// override it) and are the entry point CLI/YAML loading uses to configure
// defaults for the whole tree.

func (r *RootConfig) WhiteBalance() WhiteBalance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.whiteBalance.value
}

func (r *RootConfig) SetWhiteBalance(raw string) error {
	wb, err := ParseWhiteBalance(raw)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.whiteBalance.set(wb)
	return nil
}

func (r *RootConfig) ChromaticAberration() ChromaticAberration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chromaticAberration.value
}

func (r *RootConfig) SetChromaticAberration(raw string) error {
	ca, err := ParseChromaticAberration(raw)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chromaticAberration.set(ca)
	return nil
}

func (r *RootConfig) MedianFilter() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.medianFilter.value
}

func (r *RootConfig) SetMedianFilter(n int) error {
	if n < 0 {
		return fmt.Errorf("median_filter must be >= 0, got %d", n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.medianFilter.set(n)
	return nil
}

func (r *RootConfig) DarkFrame() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.darkFrame.value
}

func (r *RootConfig) SetDarkFrame(path string) error {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("dark_frame file %q: %w", path, err)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.darkFrame.set(path)
	return nil
}

func (r *RootConfig) FlipRotate() FlipRotate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flipRotate.value
}

func (r *RootConfig) SetFlipRotate(raw string) error {
	fr, err := ParseFlipRotate(raw)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flipRotate.set(fr)
	return nil
}

func (r *RootConfig) ThumbnailLocation() ThumbnailLocation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.thumbnailLocation.value
}

func (r *RootConfig) SetThumbnailLocation(raw string) error {
	loc, err := ParseThumbnailLocation(raw)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thumbnailLocation.set(loc)
	return nil
}

func (r *RootConfig) ThumbnailPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.thumbnailPath.value
}

func (r *RootConfig) SetThumbnailPath(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thumbnailPath.set(p)
}

func (r *RootConfig) ThumbnailResizeFactor() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.thumbnailResize.value
}

func (r *RootConfig) SetThumbnailResizeFactor(f float64) error {
	if f <= 0 || f > 1 {
		return fmt.Errorf("thumbnail_resize_factor must be in (0, 1], got %g", f)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thumbnailResize.set(f)
	return nil
}

func (r *RootConfig) ThumbnailQuality() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.thumbnailQuality.value
}

func (r *RootConfig) SetThumbnailQuality(q int) error {
	if q < 0 || q > 100 {
		return fmt.Errorf("thumbnail_quality must be 0..100, got %d", q)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thumbnailQuality.set(q)
	return nil
}

func (r *RootConfig) UseEmbeddedThumbnail() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.useEmbeddedThumb.value
}

func (r *RootConfig) SetUseEmbeddedThumbnail(b bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.useEmbeddedThumb.set(b)
}

func (r *RootConfig) IncludePhotos() StringSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.includePhotos.value
}

func (r *RootConfig) ExcludePhotos() StringSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.excludePhotos.value
}

func (r *RootConfig) GroupOrdering() GroupOrdering {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groupOrdering.value
}

func (r *RootConfig) SetGroupOrdering(raw string) error {
	o, err := ParseGroupOrdering(raw)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groupOrdering.set(o)
	return nil
}

func (r *RootConfig) IncludeGroups() StringSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.includeGroups.value
}

func (r *RootConfig) ExcludeGroups() StringSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.excludeGroups.value
}

// TruncPath rewrites p relative to the root's scope, which is always
// unchanged.
func (r *RootConfig) TruncPath(p string, file bool) string {
	return TruncPath(ScopeRoot, "", "", p, file)
}

// DumpDefaults returns the root's current option values as a map keyed by
// config option name. `--make_config` does not use it: WriteDefaultConfig
// writes fixed factory defaults instead.
func (r *RootConfig) DumpDefaults() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string]any{
		"project":              r.project,
		"database":             r.database.value,
		"log":                  r.logFile.value,
		"log_level":            r.logLevel.value,
		"workers":              r.workers.value,
		"max_processing_errors": r.errorBudget.value,
		"date_format":          "yyyy-mm-dd",
		"white_balance":        r.whiteBalance.value.String(),
		"chromatic_aberration": fmt.Sprintf("%g %g", r.chromaticAberration.value.R, r.chromaticAberration.value.B),
		"median_filter":        r.medianFilter.value,
		"group_ordering":       r.groupOrdering.value.String(),
		"thumbnail_location":   r.thumbnailLocation.value.String(),
		"thumbnail_path":       r.thumbnailPath.value,
		"thumbnail_resize_factor": r.thumbnailResize.value,
		"thumbnail_quality":   r.thumbnailQuality.value,
	}
}
