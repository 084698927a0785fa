// Package cli implements the tlmerge command line: positional mode
// dispatch (scan/preprocess/thumb), per-mode flag parsing, TLMERGE_<OPTION>
// environment overrides, and the config/scan/extract/store/thumbnail
// wiring each mode needs to run.
package cli

// Options holds every flag value parsed from one invocation, before it's
// reconciled against environment overrides and applied to a RootConfig.
// Zero-valued fields are indistinguishable from "not given" on their own;
// use wasSet to tell the two apart.
type Options struct {
	Project    string
	ConfigFile string
	Database   string
	MakeConfig bool

	Workers             int
	MaxProcessingErrors int
	Sample              string
	LogFile             string
	Verbose             bool
	Quiet               bool
	Silent              bool
	DateFormat          string

	IncludeDates  []string
	ExcludeDates  []string
	IncludeGroups []string
	ExcludeGroups []string
	GroupOrdering string

	WhiteBalance        string
	ChromaticAberration string
	MedianFilter        int
	DarkFrame           string

	ThumbnailLocation     string
	ThumbnailPath         string
	ThumbnailResizeFactor float64
	ThumbnailQuality      int

	set map[string]bool
}

func (o *Options) wasSet(name string) bool { return o.set != nil && o.set[name] }
