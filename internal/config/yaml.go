package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the sentinel config file name at every directory
// level of the project, and it's also skipped by the scanner so it's never
// mistaken for a photo.
const DefaultConfigFile = "config.tlmerge"

// loadDocuments parses a YAML file as one or more documents, lowercases and
// deduplicates every mapping key (case-insensitively) recursively, and
// returns each document as a map. Mirrors manager.py's _load_config_file /
// _normalize_yaml_construct.
func loadDocuments(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []map[string]any
	for {
		var raw any
		err := dec.Decode(&raw)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ValidationError{Option: path, Err: err}
		}
		normalized, err := normalize(raw)
		if err != nil {
			return nil, &ValidationError{Option: path, Err: err}
		}
		m, ok := normalized.(map[string]any)
		if !ok {
			return nil, &ValidationError{
				Option: path,
				Err:    fmt.Errorf("expected a YAML mapping document, got %T", normalized),
			}
		}
		docs = append(docs, m)
	}

	if len(docs) == 0 {
		return nil, &ValidationError{Option: path, Err: fmt.Errorf("empty config file")}
	}
	return docs, nil
}

func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			lk := strings.ToLower(k)
			if _, dup := out[lk]; dup {
				return nil, fmt.Errorf("duplicate key %q in config file (keys are case-insensitive)", lk)
			}
			nv, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[lk] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			nv, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return strconv.Itoa(t), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func asStringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := asString(e)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		return []string{t}, true
	default:
		return nil, false
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	default:
		return 0, false
	}
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// applyRootDocument applies one YAML document's keys to the root config,
// per manager.py's _apply_root_config_document. date_format is applied
// first since it affects parsing of include/exclude dates elsewhere.
func applyRootDocument(root *RootConfig, doc map[string]any) error {
	if v, ok := doc["date_format"]; ok {
		s, _ := asString(v)
		root.SetDateFormat(s)
	}

	var overrides []any
	for key, value := range doc {
		switch key {
		case "date_format":
			continue
		case "overrides":
			if list, ok := value.([]any); ok {
				overrides = list
			} else {
				overrides = []any{value}
			}
			continue
		}
		if err := applyRootKey(root, key, value); err != nil {
			return err
		}
	}

	for _, o := range overrides {
		m, ok := o.(map[string]any)
		if !ok {
			return &ValidationError{Option: "overrides", Err: fmt.Errorf("expected a mapping")}
		}
		if err := applyOverride(root, m, ""); err != nil {
			return err
		}
	}
	return nil
}

func applyRootKey(root *RootConfig, key string, value any) error {
	wrap := func(err error) error {
		if err == nil {
			return nil
		}
		return &ValidationError{Option: key, Err: err}
	}

	switch key {
	case "project":
		return nil // set via CLI only
	case "dark_frame":
		s, _ := asString(value)
		return wrap(root.SetDarkFrame(s))
	case "thumbnail_location":
		s, _ := asString(value)
		return wrap(root.SetThumbnailLocation(s))
	case "database":
		s, _ := asString(value)
		return wrap(root.SetDatabase(s))
	case "log":
		s, _ := asString(value)
		root.SetLogFile(s)
	case "log_level":
		s, _ := asString(value)
		return wrap(root.SetLogLevel(s))
	case "workers":
		n, ok := asInt(value)
		if !ok {
			return wrap(fmt.Errorf("expected an integer"))
		}
		return wrap(root.SetWorkers(n))
	case "max_processing_errors":
		n, ok := asInt(value)
		if !ok {
			return wrap(fmt.Errorf("expected an integer"))
		}
		return wrap(root.SetErrorBudget(n))
	case "sample":
		s, _ := asString(value)
		return wrap(root.SetSample(s))
	case "avg_photos_per_date":
		n, ok := asInt(value)
		if !ok {
			return wrap(fmt.Errorf("expected an integer"))
		}
		return wrap(root.SetAvgPhotosPerDate(n))
	case "include_dates":
		list, ok := asStringList(value)
		if !ok {
			return wrap(fmt.Errorf("expected a list of strings"))
		}
		root.AddIncludeDates(list...)
	case "exclude_dates":
		list, ok := asStringList(value)
		if !ok {
			return wrap(fmt.Errorf("expected a list of strings"))
		}
		root.AddExcludeDates(list...)
	case "include_groups":
		// date/group pair syntax handled only via overrides at root level
		return wrap(fmt.Errorf("use 'overrides' to scope include_groups to a date"))
	case "exclude_groups":
		return wrap(fmt.Errorf("use 'overrides' to scope exclude_groups to a date"))
	case "group_ordering":
		s, _ := asString(value)
		return wrap(root.SetGroupOrdering(s))
	default:
		return applyGroupKey(root, key, value)
	}
	return nil
}

// applyGroupKey applies the shared date/group-level options, which the root
// also carries as defaults. Used by root, date, and group documents alike.
func applyGroupKey(target interface {
	SetWhiteBalance(string) error
	SetChromaticAberration(string) error
	SetMedianFilter(int) error
	SetFlipRotate(string) error
	SetThumbnailPath(string)
	SetThumbnailResizeFactor(float64) error
	SetThumbnailQuality(int) error
	SetUseEmbeddedThumbnail(bool)
}, key string, value any) error {
	wrap := func(err error) error {
		if err == nil {
			return nil
		}
		return &ValidationError{Option: key, Err: err}
	}

	switch key {
	case "white_balance":
		s, _ := asString(value)
		if list, ok := asStringList(value); ok && len(list) > 1 {
			s = strings.Join(list, " ")
		}
		return wrap(target.SetWhiteBalance(s))
	case "chromatic_aberration":
		s, _ := asString(value)
		if list, ok := asStringList(value); ok && len(list) > 1 {
			s = strings.Join(list, " ")
		}
		return wrap(target.SetChromaticAberration(s))
	case "median_filter":
		n, ok := asInt(value)
		if !ok {
			return wrap(fmt.Errorf("expected an integer"))
		}
		return wrap(target.SetMedianFilter(n))
	case "flip_rotate":
		s, _ := asString(value)
		return wrap(target.SetFlipRotate(s))
	case "thumbnail_path":
		s, _ := asString(value)
		target.SetThumbnailPath(s)
	case "thumbnail_resize_factor":
		f, ok := asFloat(value)
		if !ok {
			return wrap(fmt.Errorf("expected a number"))
		}
		return wrap(target.SetThumbnailResizeFactor(f))
	case "thumbnail_quality":
		n, ok := asInt(value)
		if !ok {
			return wrap(fmt.Errorf("expected an integer"))
		}
		return wrap(target.SetThumbnailQuality(n))
	case "use_embedded_thumbnail":
		b, ok := asBool(value)
		if !ok {
			return wrap(fmt.Errorf("expected a boolean"))
		}
		target.SetUseEmbeddedThumbnail(b)
	default:
		return &ValidationError{Option: key, Err: fmt.Errorf("unknown configuration option")}
	}
	return nil
}

// applyDateGroupDocument applies a YAML document to either a DateConfig or
// GroupConfig. A group-level document may not contain "overrides".
func applyDateGroupDocument(cfg any, doc map[string]any) error {
	var overrides []any

	for key, value := range doc {
		if key == "overrides" {
			if _, isGroup := cfg.(*GroupConfig); isGroup {
				return &ValidationError{Option: "overrides", Err: fmt.Errorf(
					"overrides are only supported at the root and date levels")}
			}
			if list, ok := value.([]any); ok {
				overrides = list
			} else {
				overrides = []any{value}
			}
			continue
		}

		if err := applyDateOrGroupKey(cfg, key, value); err != nil {
			return err
		}
	}

	if dc, ok := cfg.(*DateConfig); ok {
		for _, o := range overrides {
			m, ok := o.(map[string]any)
			if !ok {
				return &ValidationError{Option: "overrides", Err: fmt.Errorf("expected a mapping")}
			}
			if err := applyOverrideInDate(dc, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyDateOrGroupKey(cfg any, key string, value any) error {
	switch c := cfg.(type) {
	case *DateConfig:
		switch key {
		case "group_ordering":
			s, _ := asString(value)
			if err := c.SetGroupOrdering(s); err != nil {
				return &ValidationError{Option: key, Err: err}
			}
			return nil
		case "include_groups":
			list, _ := asStringList(value)
			c.AddIncludeGroups(list...)
			return nil
		case "exclude_groups":
			list, _ := asStringList(value)
			c.AddExcludeGroups(list...)
			return nil
		case "include_photos":
			list, _ := asStringList(value)
			c.AddIncludePhotos(list...)
			return nil
		case "exclude_photos":
			list, _ := asStringList(value)
			c.AddExcludePhotos(list...)
			return nil
		case "dark_frame":
			s, _ := asString(value)
			c.SetDarkFrame(s)
			return nil
		case "thumbnail_location":
			s, _ := asString(value)
			if err := c.SetThumbnailLocation(s); err != nil {
				return &ValidationError{Option: key, Err: err}
			}
			return nil
		default:
			return applyGroupKey(c, key, value)
		}
	case *GroupConfig:
		switch key {
		case "include_photos":
			list, _ := asStringList(value)
			c.AddIncludePhotos(list...)
			return nil
		case "exclude_photos":
			list, _ := asStringList(value)
			c.AddExcludePhotos(list...)
			return nil
		case "dark_frame":
			s, _ := asString(value)
			c.SetDarkFrame(s)
			return nil
		case "thumbnail_location":
			s, _ := asString(value)
			if err := c.SetThumbnailLocation(s); err != nil {
				return &ValidationError{Option: key, Err: err}
			}
			return nil
		default:
			return applyGroupKey(c, key, value)
		}
	default:
		return fmt.Errorf("unsupported config target %T", cfg)
	}
}

func overrideDateGroup(doc map[string]any, key string) (string, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := asString(v)
	if !ok {
		return "", fmt.Errorf("%q must be a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return s, nil
}

// applyOverride applies a root-level "overrides" entry, which must name its
// own date (and optionally group).
func applyOverride(root *RootConfig, doc map[string]any, dateContext string) error {
	dateStr, err := overrideDateGroup(doc, "date")
	if err != nil {
		return &ValidationError{Option: "overrides", Err: err}
	}
	groupStr, err := overrideDateGroup(doc, "group")
	if err != nil {
		return &ValidationError{Option: "overrides", Err: err}
	}

	if dateContext == "" && dateStr == "" {
		return &ValidationError{Option: "overrides", Err: fmt.Errorf(
			"must specify a date for the config override in the root config file")}
	}
	if dateContext != "" && dateStr != "" && dateContext != dateStr {
		return &ValidationError{Option: "overrides", Err: fmt.Errorf(
			"date %q in override doesn't match containing date %q", dateStr, dateContext)}
	}
	if dateContext != "" {
		dateStr = dateContext
	}
	if groupStr == "" && dateContext != "" {
		return &ValidationError{Option: "overrides", Err: fmt.Errorf(
			"must specify a group for the config override in the %q config file", dateContext)}
	}

	delete(doc, "date")
	delete(doc, "group")

	mgr := overrideManager(root)
	cfg, err := mgr.Get(dateStr, groupStr)
	if err != nil {
		return &ValidationError{Option: "overrides", Err: err}
	}
	return applyDateGroupDocument(cfg, doc)
}

func applyOverrideInDate(dc *DateConfig, doc map[string]any) error {
	return applyOverride(dc.parent, doc, dc.DateDir())
}

// overrideManagerHook lets applyOverride reach the Manager that owns root
// without introducing an import cycle (Manager depends on RootConfig, not
// the other way around). LoadRoot sets this once at startup.
var overrideManagerHook func(*RootConfig) *Manager

func overrideManager(root *RootConfig) *Manager {
	if overrideManagerHook == nil {
		return NewManager(root)
	}
	return overrideManagerHook(root)
}

// LoadRoot parses the root config file (if it exists) and applies its
// documents to root. Returns whether a file was found and applied.
func LoadRoot(mgr *Manager, path string) (bool, error) {
	overrideManagerHook = func(r *RootConfig) *Manager {
		if r == mgr.root {
			return mgr
		}
		return NewManager(r)
	}

	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	docs, err := loadDocuments(path)
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if err := applyRootDocument(mgr.root, doc); err != nil {
			return false, err
		}
	}
	return true, nil
}

// LoadAll walks the project tree and applies per-directory YAML config
// files. Only top-level directories whose names match date_format are
// visited; include/exclude filters are not applied, so every such date
// directory's config.tlmerge, and every group directory's beneath it, is
// loaded if present.
func LoadAll(mgr *Manager) (int, error) {
	project := mgr.root.Project()
	entries, err := os.ReadDir(project)
	if err != nil {
		return 0, fmt.Errorf("reading project directory %q: %w", project, err)
	}

	n := 0
	for _, de := range entries {
		if !de.IsDir() || !MatchesDateFormat(de.Name(), mgr.root.DateFormat()) {
			continue
		}
		dateDir := de.Name()
		dateFile := filepath.Join(project, dateDir, DefaultConfigFile)
		if _, err := os.Stat(dateFile); err == nil {
			dc, err := mgr.NewDate(dateDir)
			if err != nil {
				return n, err
			}
			docs, err := loadDocuments(dateFile)
			if err != nil {
				return n, err
			}
			for _, doc := range docs {
				if err := applyDateGroupDocument(dc, doc); err != nil {
					return n, err
				}
			}
			n++
		}

		groupEntries, err := os.ReadDir(filepath.Join(project, dateDir))
		if err != nil {
			continue
		}
		for _, ge := range groupEntries {
			if !ge.IsDir() {
				continue
			}
			groupFile := filepath.Join(project, dateDir, ge.Name(), DefaultConfigFile)
			if _, err := os.Stat(groupFile); err != nil {
				continue
			}
			gc, err := mgr.NewGroup(dateDir, ge.Name())
			if err != nil {
				return n, err
			}
			docs, err := loadDocuments(groupFile)
			if err != nil {
				return n, err
			}
			for _, doc := range docs {
				if err := applyDateGroupDocument(gc, doc); err != nil {
					return n, err
				}
			}
			n++
		}
	}

	return n, nil
}

// WriteDefaultConfig writes a default root config file, with a short comment
// header, to path, for `--make_config` (supplemented feature; grounded on
// write_default_config in the original implementation). It doesn't use the
// live RootConfig.DumpDefaults values since those reflect whatever CLI flags
// were already applied -- this always emits the documented factory defaults.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing config file %q", path)
	}

	var b strings.Builder
	b.WriteString("# tlmerge root configuration\n")
	b.WriteString("# Generated by --make_config. The keys from white_balance on may also be\n")
	b.WriteString("# set per-date in that directory's config.tlmerge file, and all of them\n")
	b.WriteString("# except group_ordering per-group.\n\n")

	fmt.Fprintf(&b, "database: %s\n", "tlmerge.db")
	fmt.Fprintf(&b, "log: %s\n", "")
	fmt.Fprintf(&b, "log_level: %s\n", "info")
	fmt.Fprintf(&b, "workers: %d\n", 4)
	fmt.Fprintf(&b, "max_processing_errors: %d\n", 5)
	fmt.Fprintf(&b, "date_format: %s\n", "yyyy-mm-dd")
	fmt.Fprintf(&b, "avg_photos_per_date: %d\n", 50)
	fmt.Fprintf(&b, "sample: %s\n", "-1")
	b.WriteString("\n")
	fmt.Fprintf(&b, "white_balance: %s\n", "default")
	fmt.Fprintf(&b, "chromatic_aberration: %s\n", "0 0")
	fmt.Fprintf(&b, "median_filter: %d\n", 0)
	fmt.Fprintf(&b, "dark_frame: %s\n", "")
	fmt.Fprintf(&b, "flip_rotate: %s\n", "none")
	fmt.Fprintf(&b, "group_ordering: %s\n", "natural")
	b.WriteString("\n")
	fmt.Fprintf(&b, "thumbnail_location: %s\n", "group")
	fmt.Fprintf(&b, "thumbnail_path: %s\n", "thumbnails")
	fmt.Fprintf(&b, "thumbnail_resize_factor: %g\n", 1.0)
	fmt.Fprintf(&b, "thumbnail_quality: %d\n", 85)
	fmt.Fprintf(&b, "use_embedded_thumbnail: %t\n", false)

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
