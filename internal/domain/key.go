package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// NotificationKey derives the deduplication identity of an alert. Alerts
// about a concrete product key on "category:product_id" so restocking and
// expiry alerts collapse per product; everything else keys on a slug of the
// title, truncated so verbose titles still collide with their retries.
func NotificationKey(category string, metadata map[string]any, title string) string {
	if pid := productIDFrom(metadata); pid != "" {
		return category + ":" + pid
	}
	return category + ":" + slugify(truncateRunes(title, 50))
}

// productIDFrom extracts a product identifier from alert metadata. JSON
// decoding yields float64 for numeric ids, so both forms are handled.
func productIDFrom(metadata map[string]any) string {
	if metadata == nil {
		return ""
	}
	switch v := metadata["product_id"].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// truncateRunes clips s to at most n runes.
func truncateRunes(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}

// slugify lowercases s and collapses every run of non-alphanumeric
// characters to a single hyphen.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

var nonAlnumRE = regexp.MustCompile(`[^a-z0-9]+`)
