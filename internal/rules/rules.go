// Package rules holds the keyword tables and predicates the verification
// pipeline is built on. The policy lives in the tables, not in control
// flow, so extending a list never touches the matcher.
package rules

import "strings"

// ReservedLocationKeywords are disaster-type keywords that must never be
// accepted as a location: a submission whose location equals one of these
// would corrupt news-query construction downstream.
var ReservedLocationKeywords = []string{
	"flood", "earthquake", "cyclone", "wildfire", "landslide",
}

// IsReservedLocation reports whether loc is exactly a reserved
// disaster-type keyword, case-insensitive.
func IsReservedLocation(loc string) bool {
	l := strings.ToLower(strings.TrimSpace(loc))
	for _, kw := range ReservedLocationKeywords {
		if l == kw {
			return true
		}
	}
	return false
}

// consistencyRule fires when a report of the given type carries the given
// keyword in its title. An empty Type matches any known (non-Unknown) type.
type consistencyRule struct {
	Type    string
	Keyword string
}

// Denylist of logically impossible type/title combinations. Conservative:
// cases not listed are accepted as plausible.
var implausiblePairs = []consistencyRule{
	{Type: "wildfire", Keyword: "rain"},
	{Type: "earthquake", Keyword: "flood"},
	{Type: "", Keyword: "normal"},
}

// Plausible reports whether a disaster type and a title are mutually
// plausible. The check is case-insensitive and substring-based.
func Plausible(disasterType, title string) bool {
	typ := strings.ToLower(disasterType)
	text := strings.ToLower(title)
	for _, r := range implausiblePairs {
		if r.Type == "" {
			if typ != "unknown" && strings.Contains(text, r.Keyword) {
				return false
			}
			continue
		}
		if typ == r.Type && strings.Contains(text, r.Keyword) {
			return false
		}
	}
	return true
}

// exclusionKeywords mark headlines that look like disasters but are not
// (military exercises, drills, the "Desert Cyclone" wargame).
var exclusionKeywords = []string{
	"exercise", "military", "drill", "training", "desert cyclone",
}

// inclusionKeywords are disaster-impact terms a headline or body must
// carry before it counts as real disaster coverage.
var inclusionKeywords = []string{
	"damage", "destroyed", "killed", "injured", "evacuated",
	"relief", "rescue", "emergency", "magnitude", "richter", "seismic",
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// HasExcludedKeyword reports whether text matches the non-disaster
// exclusion list. Case-insensitive.
func HasExcludedKeyword(text string) bool {
	return containsAny(strings.ToLower(text), exclusionKeywords)
}

// HasDisasterContext reports whether text carries at least one
// disaster-impact keyword. Case-insensitive.
func HasDisasterContext(text string) bool {
	return containsAny(strings.ToLower(text), inclusionKeywords)
}

// typeKeywords maps title keywords to canonical disaster-type labels.
// Order matters: the first matching entry wins.
var typeKeywords = []struct {
	Keyword string
	Label   string
}{
	{"flood", "Flood"},
	{"earthquake", "Earthquake"},
	{"cyclone", "Cyclone"},
	{"landslide", "Landslide"},
	{"wildfire", "Wildfire"},
	{"fire", "Wildfire"},
}

// ExtractType infers a disaster type from a news title. It returns
// "Unknown" when the title matches the exclusion list, lacks disaster
// context, or names no known type.
func ExtractType(title string) string {
	t := strings.ToLower(title)
	if containsAny(t, exclusionKeywords) {
		return "Unknown"
	}
	if !containsAny(t, inclusionKeywords) {
		return "Unknown"
	}
	for _, tk := range typeKeywords {
		if strings.Contains(t, tk.Keyword) {
			return tk.Label
		}
	}
	return "Unknown"
}

// NormalizeType maps a free-form classifier label onto the canonical
// vocabulary. Unrecognized non-empty labels pass through trimmed, so an
// oracle retrained with new classes keeps working.
func NormalizeType(label string) string {
	l := strings.TrimSpace(label)
	if l == "" {
		return "Unknown"
	}
	for _, tk := range typeKeywords {
		if strings.EqualFold(l, tk.Label) {
			return tk.Label
		}
	}
	if strings.EqualFold(l, "unknown") {
		return "Unknown"
	}
	return l
}
