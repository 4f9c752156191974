package scrape

import "strings"

// maxAddressSegments keeps street plus immediate locality.
const maxAddressSegments = 2

// NormalizeText trims and collapses internal whitespace runs to one space.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeAddress cleans a raw address and keeps only its first two
// comma-separated segments, e.g. "123 Main St, Springfield, Extra" becomes
// "123 Main St, Springfield".
func NormalizeAddress(raw string) string {
	text := NormalizeText(raw)
	if !strings.Contains(text, ",") {
		return text
	}

	segments := make([]string, 0, maxAddressSegments)
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segments = append(segments, part)
		if len(segments) == maxAddressSegments {
			break
		}
	}
	return strings.Join(segments, ", ")
}
