package config

import (
	"regexp"
	"strings"
)

// ProcessDateFormat converts human spellings like "yyyy-mm-dd" into
// strftime-form "%Y-%m-%d". A backslash escapes the following character so
// it's taken literally; a percent sign followed by y/m/d/% passes through
// unchanged, since it's already a recognized strftime directive.
//
// Ported character-for-character from the original implementation's
// process_date_format.
func ProcessDateFormat(format string) string {
	if format == "" {
		return format
	}

	var b strings.Builder
	runes := []rune(format)
	n := len(runes)

	for i := 0; i < n; {
		if runes[i] == '\\' {
			if i+1 == n {
				b.WriteRune('\\')
				break
			}
			b.WriteRune(runes[i+1])
			i += 2
			continue
		}

		if runes[i] == '%' {
			if i+1 == n {
				b.WriteRune('%')
				break
			}
			switch lowerRune(runes[i+1]) {
			case 'y', 'm', 'd', '%':
				b.WriteRune('%')
				b.WriteRune(runes[i+1])
				i += 2
				continue
			}
		}

		window := string(runes[i:min(i+4, n)])
		lower := strings.ToLower(window)

		switch {
		case strings.HasPrefix(lower, "yyyy"):
			b.WriteString("%Y")
			i += 4
		case strings.HasPrefix(lower, "yy"):
			b.WriteString("%y")
			i += 2
		case len(lower) > 0 && lower[0] == 'm':
			b.WriteString("%m")
			if strings.HasPrefix(lower, "mm") {
				i += 2
			} else {
				i++
			}
		case len(lower) > 0 && lower[0] == 'd':
			b.WriteString("%d")
			if strings.HasPrefix(lower, "dd") {
				i += 2
			} else {
				i++
			}
		default:
			b.WriteRune(runes[i])
			i++
		}
	}

	return b.String()
}

// MatchesDateFormat reports whether name is a valid date string under the
// strftime-form format produced by ProcessDateFormat. This is a minimal
// strptime substitute covering the directives ProcessDateFormat emits
// (%Y, %y, %m, %d, %%), sufficient for validating date directory names
// like "yyyy-mm-dd" during traversal.
func MatchesDateFormat(name, format string) bool {
	pattern := "^"
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '%' && i+1 < len(runes) {
			switch runes[i+1] {
			case 'Y':
				pattern += `\d{4}`
			case 'y':
				pattern += `\d{2}`
			case 'm', 'd':
				pattern += `\d{1,2}`
			case '%':
				pattern += `%`
			default:
				pattern += regexp.QuoteMeta(string(runes[i+1]))
			}
			i++
			continue
		}
		pattern += regexp.QuoteMeta(string(runes[i]))
	}
	pattern += "$"

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(name)
}

func lowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
