// Package doi extracts canonical bare DOIs from free-form identifier strings
// and classifies stored "doi" property values.
//
// A canonical DOI has the form 10.<registrant>/<suffix>. Stored values may be
// bare, prefixed with the "doi:" scheme marker, or embedded in a dx.doi.org
// resolver URL. Normalize reduces all of these to the bare form.
package doi

import (
	"regexp"
	"strings"
)

// Property is the node property holding DOI values.
const Property = "doi"

const (
	schemePrefix   = "doi:"
	resolverPrefix = "dx.doi.org/"
)

// pattern matches a DOI: the "10." directory indicator, a dotted numeric
// registrant code, a slash, and a suffix running up to whitespace or a
// character that cannot appear unescaped in markup.
var pattern = regexp.MustCompile(`10\.[0-9]+(?:\.[0-9]+)*/[^\s"&'<>]+`)

// Normalize returns the canonical DOI contained in raw.
//
// The text after the first "doi:" is kept, then the text after the first
// "dx.doi.org/", and the first DOI-shaped substring of what remains is the
// result. The rule is applied again to its own output until the value stops
// changing, so Normalize(Normalize(s)) == Normalize(s) for every s.
//
// The second return is false when raw is empty or holds no DOI.
func Normalize(raw string) (string, bool) {
	current, ok := extract(raw)
	if !ok {
		return "", false
	}
	for {
		next, ok := extract(current)
		if !ok {
			return "", false
		}
		if next == current {
			return current, true
		}
		// Every round that changes the value returns a strict substring of
		// its input, so this terminates.
		current = next
	}
}

// extract applies one round of prefix stripping and pattern matching.
func extract(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if _, after, found := strings.Cut(s, schemePrefix); found {
		s = after
	}
	if _, after, found := strings.Cut(s, resolverPrefix); found {
		s = after
	}
	m := pattern.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}
