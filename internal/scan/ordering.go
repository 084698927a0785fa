// Package scan implements the directory scanner: it walks a project's
// date/group/photo tree under the configuration tree's filtering and
// sampling policy and streams matching photo paths.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/billysbar/tlmerge/internal/config"
)

// Bounded name lengths for date/group/photo directory entries, matching the
// database column widths the original implementation enforces.
const (
	maxDateLength  = 25
	maxGroupLength = 25
	maxPhotoLength = 25
)

// entry is one directory entry plus whatever a level's filter function
// computed from its name (a parsed date, a parsed group number, nothing).
type entry struct {
	path    string
	name    string
	sortKey any
}

// listDir lists root, keeping only entries that are directories (wantDirs)
// or files, pass the allowed include/exclude check, and pass filter (if
// given). filter returns a sort key and whether the entry should be kept at
// all; a nil filter keeps every entry with a nil sort key. Entries whose
// name exceeds maxLength are skipped with a warning, mirroring the original
// scanner's "iterate" helper.
func listDir(root string, maxLength int, wantDirs bool, allowed func(name string) bool,
	filter func(name string) (any, bool)) ([]entry, error) {

	des, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", root, err)
	}

	var out []entry
	for _, de := range des {
		if de.IsDir() != wantDirs {
			continue
		}
		name := de.Name()
		if allowed != nil && !allowed(name) {
			continue
		}

		var key any
		if filter != nil {
			k, ok := filter(name)
			if !ok {
				continue
			}
			key = k
		}

		if len(name) > maxLength {
			log.Warn().Str("path", filepath.Join(root, name)).Int("max_length", maxLength).
				Msg("skipping entry: name exceeds maximum supported length")
			continue
		}

		out = append(out, entry{path: filepath.Join(root, name), name: name, sortKey: key})
	}
	return out, nil
}

// orderNatural sorts lexicographically by name (the "natural" policy).
func orderNatural(entries []entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
}

// filterNum accepts only names that parse as a decimal number.
func filterNum(name string) (any, bool) {
	n, err := strconv.ParseFloat(name, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

// orderNum sorts by the parsed numeric key, then by name as a tiebreak.
func orderNum(entries []entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].sortKey.(float64), entries[j].sortKey.(float64)
		if a != b {
			return a < b
		}
		return entries[i].name < entries[j].name
	})
}

// filterABC accepts only all-alphabetic names.
func filterABC(name string) (any, bool) {
	if name == "" || !isAlpha(name) {
		return nil, false
	}
	return nil, true
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// orderABC sorts by (length, lowercase name): a, b, ..., z, aa, ab, ...
func orderABC(entries []entry) {
	sort.Slice(entries, func(i, j int) bool {
		li, lj := len(entries[i].name), len(entries[j].name)
		if li != lj {
			return li < lj
		}
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})
}

// applyGroupOrdering sorts group entries per the config policy. It does not
// filter: entries whose names do not fit the num or abc shape are already
// dropped by groupFilter when the directory is listed.
func applyGroupOrdering(entries []entry, ordering config.GroupOrdering, order bool) []entry {
	if !order {
		return entries
	}
	switch ordering {
	case config.OrderNum:
		orderNum(entries)
	case config.OrderABC:
		orderABC(entries)
	default:
		orderNatural(entries)
	}
	return entries
}

// groupFilter returns the name filter for a group ordering policy, applied
// during directory listing before any sort -- num/abc reject non-conforming
// names outright, natural accepts everything.
func groupFilter(ordering config.GroupOrdering) func(string) (any, bool) {
	switch ordering {
	case config.OrderNum:
		return filterNum
	case config.OrderABC:
		return filterABC
	default:
		return nil
	}
}
