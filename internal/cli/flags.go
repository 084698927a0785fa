package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// modes lists the recognized positional CLI modes.
var modes = map[string]bool{"scan": true, "preprocess": true, "thumb": true}

// splitMode separates the positional mode from the flags that follow it.
func splitMode(args []string) (mode string, rest []string, err error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("missing mode: expected one of scan, preprocess, thumb")
	}
	mode = args[0]
	if !modes[mode] {
		return "", nil, fmt.Errorf("unknown mode %q: expected one of scan, preprocess, thumb", mode)
	}
	return mode, args[1:], nil
}

// stringList is a repeatable string flag: each occurrence of -flag appends
// to the slice instead of overwriting it, for the `…` (sets) flags in
// spec §6 like --include_dates.
type stringList struct{ values *[]string }

func (s stringList) String() string {
	if s.values == nil {
		return ""
	}
	return strings.Join(*s.values, ",")
}

func (s stringList) Set(v string) error {
	*s.values = append(*s.values, v)
	return nil
}

// parseFlags builds and parses the flag set for one mode. Every documented
// flag is registered regardless of mode: scan and preprocess share the
// scanning/sampling/filtering surface, and preprocess and thumb share the
// project/config/database/thumbnail_* surface, so there is no flag that
// some mode would need to reject outright.
func parseFlags(mode string, args []string, stderr io.Writer) (*Options, error) {
	fs := flag.NewFlagSet(mode, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opt := &Options{set: make(map[string]bool)}

	fs.StringVar(&opt.Project, "project", "", "project directory")
	fs.StringVar(&opt.Project, "p", "", "project directory (shorthand for -project)")
	fs.StringVar(&opt.ConfigFile, "config", "", "root config YAML file (default <project>/config.tlmerge)")
	fs.StringVar(&opt.ConfigFile, "c", "", "root config YAML file (shorthand for -config)")
	fs.StringVar(&opt.Database, "database", "", "database file path")
	fs.StringVar(&opt.Database, "d", "", "database file path (shorthand for -database)")
	fs.BoolVar(&opt.MakeConfig, "make_config", false, "write a default config file if one is absent, then exit")

	fs.IntVar(&opt.Workers, "workers", 0, "pool worker count hint")
	fs.IntVar(&opt.MaxProcessingErrors, "max_processing_errors", 0, "error budget")
	fs.StringVar(&opt.Sample, "sample", "", "sample size: N, ~N (random), or -1 (disabled)")
	fs.StringVar(&opt.LogFile, "log", "", "log file path, empty disables file logging")
	fs.BoolVar(&opt.Verbose, "v", false, "verbose logging")
	fs.BoolVar(&opt.Quiet, "q", false, "quiet logging")
	fs.BoolVar(&opt.Silent, "s", false, "silent logging")
	fs.StringVar(&opt.DateFormat, "date_format", "", "date directory format (human or strftime)")

	fs.Var(stringList{&opt.IncludeDates}, "include_dates", "date to include (repeatable)")
	fs.Var(stringList{&opt.ExcludeDates}, "exclude_dates", "date to exclude (repeatable)")
	fs.Var(stringList{&opt.IncludeGroups}, "include_groups", "DATE/GROUP to include (repeatable)")
	fs.Var(stringList{&opt.ExcludeGroups}, "exclude_groups", "DATE/GROUP to exclude (repeatable)")
	fs.StringVar(&opt.GroupOrdering, "group_ordering", "", "group ordering: abc, natural, or num")

	fs.StringVar(&opt.WhiteBalance, "white_balance", "", `white balance multipliers "R G1 B G2"`)
	fs.StringVar(&opt.ChromaticAberration, "chromatic_aberration", "", `chromatic aberration multipliers "R B"`)
	fs.IntVar(&opt.MedianFilter, "median_filter", 0, "median filter pass count")
	fs.StringVar(&opt.DarkFrame, "dark_frame", "", "dark frame file path")

	fs.StringVar(&opt.ThumbnailLocation, "thumbnail_location", "", "thumbnail location: root, date, group, or custom")
	fs.StringVar(&opt.ThumbnailPath, "thumbnail_path", "", "thumbnail path component")
	fs.Float64Var(&opt.ThumbnailResizeFactor, "thumbnail_resize_factor", 0, "thumbnail resize factor, 0 < F <= 1")
	fs.IntVar(&opt.ThumbnailQuality, "thumbnail_quality", 0, "thumbnail JPEG quality, 0..100")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if countTrue(opt.Verbose, opt.Quiet, opt.Silent) > 1 {
		return nil, fmt.Errorf("at most one of -v, -q, -s may be given")
	}

	fs.Visit(func(f *flag.Flag) { opt.set[canonicalName(f.Name)] = true })
	return opt, nil
}

func countTrue(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// canonicalName folds the -p/-c/-d shorthands onto their long option name
// so wasSet doesn't care which spelling the user typed.
func canonicalName(flagName string) string {
	switch flagName {
	case "p":
		return "project"
	case "c":
		return "config"
	case "d":
		return "database"
	default:
		return flagName
	}
}
