package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/billysbar/tlmerge/internal/config"
)

// envName returns the TLMERGE_<OPTION> environment variable name for an
// option, per spec §6.
func envName(option string) string {
	return "TLMERGE_" + strings.ToUpper(option)
}

// resolveString returns opt's explicitly-set value for name, falling back
// to its environment override, per the "CLI wins over env" precedence.
// The bool reports whether either source provided a value.
func resolveString(opt *Options, name, cliValue string) (string, bool) {
	if opt.wasSet(name) {
		return cliValue, true
	}
	if v, ok := os.LookupEnv(envName(name)); ok {
		return v, true
	}
	return "", false
}

func resolveList(opt *Options, name string, cliValues []string) ([]string, bool) {
	if opt.wasSet(name) {
		return cliValues, true
	}
	if v, ok := os.LookupEnv(envName(name)); ok {
		return splitList(v), true
	}
	return nil, false
}

func splitList(v string) []string {
	v = strings.ReplaceAll(v, ",", " ")
	return strings.Fields(v)
}

// applyOptions resolves every option (CLI, then environment, then leaves
// whatever YAML already set) and applies it to mgr's root config. Group
// include/exclude entries are DATE/GROUP pairs scoped to the date they
// name, so they go through the manager rather than the root directly.
func applyOptions(mgr *config.Manager, opt *Options) error {
	root := mgr.Root()

	if v, ok := resolveString(opt, "database", opt.Database); ok {
		if err := root.SetDatabase(v); err != nil {
			return fmt.Errorf("--database: %w", err)
		}
	}
	if v, ok := resolveString(opt, "workers", strconv.Itoa(opt.Workers)); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("--workers: %w", err)
		}
		if err := root.SetWorkers(n); err != nil {
			return fmt.Errorf("--workers: %w", err)
		}
	}
	if v, ok := resolveString(opt, "max_processing_errors", strconv.Itoa(opt.MaxProcessingErrors)); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("--max_processing_errors: %w", err)
		}
		if err := root.SetErrorBudget(n); err != nil {
			return fmt.Errorf("--max_processing_errors: %w", err)
		}
	}
	if v, ok := resolveString(opt, "sample", opt.Sample); ok {
		if err := root.SetSample(v); err != nil {
			return fmt.Errorf("--sample: %w", err)
		}
	}
	if v, ok := resolveString(opt, "log", opt.LogFile); ok {
		root.SetLogFile(v)
	}
	if level, ok := logLevel(opt); ok {
		if err := root.SetLogLevel(level); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}
	if v, ok := resolveString(opt, "date_format", opt.DateFormat); ok {
		root.SetDateFormat(v)
	}
	if v, ok := resolveString(opt, "group_ordering", opt.GroupOrdering); ok {
		if err := root.SetGroupOrdering(v); err != nil {
			return fmt.Errorf("--group_ordering: %w", err)
		}
	}
	if v, ok := resolveString(opt, "white_balance", opt.WhiteBalance); ok {
		if err := root.SetWhiteBalance(v); err != nil {
			return fmt.Errorf("--white_balance: %w", err)
		}
	}
	if v, ok := resolveString(opt, "chromatic_aberration", opt.ChromaticAberration); ok {
		if err := root.SetChromaticAberration(v); err != nil {
			return fmt.Errorf("--chromatic_aberration: %w", err)
		}
	}
	if v, ok := resolveString(opt, "median_filter", strconv.Itoa(opt.MedianFilter)); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("--median_filter: %w", err)
		}
		if err := root.SetMedianFilter(n); err != nil {
			return fmt.Errorf("--median_filter: %w", err)
		}
	}
	if v, ok := resolveString(opt, "dark_frame", opt.DarkFrame); ok {
		if err := root.SetDarkFrame(v); err != nil {
			return fmt.Errorf("--dark_frame: %w", err)
		}
	}
	if v, ok := resolveString(opt, "thumbnail_location", opt.ThumbnailLocation); ok {
		if err := root.SetThumbnailLocation(v); err != nil {
			return fmt.Errorf("--thumbnail_location: %w", err)
		}
	}
	if v, ok := resolveString(opt, "thumbnail_path", opt.ThumbnailPath); ok {
		root.SetThumbnailPath(v)
	}
	if v, ok := resolveString(opt, "thumbnail_resize_factor", strconv.FormatFloat(opt.ThumbnailResizeFactor, 'g', -1, 64)); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("--thumbnail_resize_factor: %w", err)
		}
		if err := root.SetThumbnailResizeFactor(f); err != nil {
			return fmt.Errorf("--thumbnail_resize_factor: %w", err)
		}
	}
	if v, ok := resolveString(opt, "thumbnail_quality", strconv.Itoa(opt.ThumbnailQuality)); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("--thumbnail_quality: %w", err)
		}
		if err := root.SetThumbnailQuality(n); err != nil {
			return fmt.Errorf("--thumbnail_quality: %w", err)
		}
	}

	if dates, ok := resolveList(opt, "include_dates", opt.IncludeDates); ok {
		root.AddIncludeDates(dates...)
	}
	if dates, ok := resolveList(opt, "exclude_dates", opt.ExcludeDates); ok {
		root.AddExcludeDates(dates...)
	}
	if err := applyGroupList(mgr, opt, "include_groups", opt.IncludeGroups, (*config.DateConfig).AddIncludeGroups); err != nil {
		return err
	}
	if err := applyGroupList(mgr, opt, "exclude_groups", opt.ExcludeGroups, (*config.DateConfig).AddExcludeGroups); err != nil {
		return err
	}

	return nil
}

// logLevel translates the mutually-exclusive -v/-q/-s flags (or their
// TLMERGE_VERBOSE/TLMERGE_QUIET/TLMERGE_SILENT environment equivalents)
// into one of RootConfig's log levels.
func logLevel(opt *Options) (string, bool) {
	verbose := opt.Verbose || envBool("TLMERGE_VERBOSE")
	quiet := opt.Quiet || envBool("TLMERGE_QUIET")
	silent := opt.Silent || envBool("TLMERGE_SILENT")
	switch {
	case silent:
		return "silent", true
	case quiet:
		return "warn", true
	case verbose:
		return "debug", true
	default:
		return "", false
	}
}

func envBool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// applyGroupList applies a list of "DATE/GROUP" entries by creating (or
// reusing) the named date and calling add on it.
func applyGroupList(mgr *config.Manager, opt *Options, name string, cliValues []string, add func(*config.DateConfig, ...string)) error {
	entries, ok := resolveList(opt, name, cliValues)
	if !ok {
		return nil
	}
	for _, entry := range entries {
		date, group, found := strings.Cut(entry, "/")
		if !found || date == "" || group == "" {
			return fmt.Errorf("--%s: %q must be in DATE/GROUP form", name, entry)
		}
		dc, err := mgr.NewDate(date)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		add(dc, group)
	}
	return nil
}
