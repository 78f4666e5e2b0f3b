package extractor

import (
	"regexp"
	"strings"
	"time"
)

// datePatterns are tried in order; the first match wins. The site prefixes
// many entries with "Last Updated", so those forms get priority over bare
// dates appearing elsewhere in the text.
var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`(?i)(?:last\s+)?updated(?:\s+on)?:?\s*(\d{1,2}\.\d{1,2}\.\d{4})`), "2.1.2006"},
	{regexp.MustCompile(`(?i)(?:last\s+)?updated(?:\s+on)?:?\s*(\d{1,2}/\d{1,2}/\d{4})`), "2/1/2006"},
	{regexp.MustCompile(`(\d{4}-\d{1,2}-\d{1,2})`), "2006-1-2"},
	{regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{4})`), "2.1.2006"},
	{regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`), "2/1/2006"},
	{regexp.MustCompile(`(?i)((?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{1,2},?\s+\d{4})`), ""},
}

var monthLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// ExtractDate pulls the first recognizable publication date out of text and
// returns it in UTC. The second return is false when no pattern matches.
func ExtractDate(text string) (time.Time, bool) {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := m[1]
		if p.layout != "" {
			if ts, err := time.ParseInLocation(p.layout, raw, time.UTC); err == nil {
				return ts, true
			}
			continue
		}
		if ts, ok := parseMonthDate(raw); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// capitalize uppercases the leading month word so abbreviated and full month
// layouts both parse.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseMonthDate(raw string) (time.Time, bool) {
	normalized := capitalize(strings.ToLower(strings.TrimSpace(raw)))
	for _, layout := range monthLayouts {
		if ts, err := time.ParseInLocation(layout, normalized, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
