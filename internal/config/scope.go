package config

import (
	"path"
	"strings"

	"github.com/rs/zerolog/log"
)

// StringSet is a small unordered set of strings used for the include/exclude
// filters at each config level.
type StringSet map[string]struct{}

func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, i := range items {
		if i = strings.TrimSpace(i); i != "" {
			s[i] = struct{}{}
		}
	}
	return s
}

func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

func (s StringSet) Add(items ...string) StringSet {
	out := make(StringSet, len(s)+len(items))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, i := range items {
		if i = strings.TrimSpace(i); i != "" {
			out[i] = struct{}{}
		}
	}
	return out
}

// Allowed implements the "exclude filtered by include" rule from spec
// §4.2: a path is dropped iff it appears in exclude and not in include.
func Allowed(include, exclude StringSet, key string) bool {
	if exclude.Has(key) {
		return include.Has(key)
	}
	return true
}

// ScopeLevel identifies which config level a TruncPath call targets.
type ScopeLevel int

const (
	ScopeRoot ScopeLevel = iota
	ScopeDate
	ScopeGroup
)

// OutOfScope is the sentinel returned by TruncPath when a path doesn't fall
// within the config level's subtree.
const OutOfScope = "\x00out-of-scope\x00"

// TruncPath rewrites path to this config level's scope:
//
//   - the root returns the path unchanged.
//   - a date config strips a matching leading date component, or returns
//     OutOfScope if the path doesn't start with this date's directory name.
//   - a group config additionally strips a matching group component.
//
// When file is true, it logs a warning if the last remaining path segment
// lacks an extension (and vice versa when file is false but the segment has
// one) -- this mirrors a collision/typo the original implementation flags
// so a misconfigured override doesn't fail silently.
func TruncPath(level ScopeLevel, dateDir, groupDir, p string, file bool) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	segments = removeEmpty(segments)

	switch level {
	case ScopeRoot:
		// unchanged
	case ScopeDate:
		if len(segments) == 0 || segments[0] != dateDir {
			return OutOfScope
		}
		segments = segments[1:]
	case ScopeGroup:
		if len(segments) < 1 {
			return OutOfScope
		}
		// Accept either "date/group/..." or "group/..." forms.
		if segments[0] == dateDir {
			segments = segments[1:]
		}
		if len(segments) == 0 || segments[0] != groupDir {
			return OutOfScope
		}
		segments = segments[1:]
	}

	result := strings.Join(segments, "/")

	if len(segments) > 0 {
		last := segments[len(segments)-1]
		hasExt := path.Ext(last) != ""
		if file && !hasExt {
			log.Warn().Str("path", p).Msg("trunc_path: expected a file but last segment has no extension")
		} else if !file && hasExt {
			log.Warn().Str("path", p).Msg("trunc_path: expected a directory but last segment looks like a file")
		}
	}

	return result
}

func removeEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
