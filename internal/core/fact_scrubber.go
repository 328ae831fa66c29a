// ABOUTME: FactScrubber extracts personal facts from user messages with ordered regex probes
// ABOUTME: Name, location and occupation are last-write-wins; likes and dislikes accumulate
package core

import (
	"regexp"
	"strings"

	"github.com/harper/yaan/internal/models"
)

// FactField identifies which part of UserFacts a probe writes
type FactField string

const (
	FactName       FactField = "name"
	FactLocation   FactField = "location"
	FactOccupation FactField = "occupation"
	FactLike       FactField = "like"
	FactDislike    FactField = "dislike"
)

type factProbe struct {
	field   FactField
	pattern *regexp.Regexp
}

// factProbes run in declaration order against the lower-cased message
var factProbes = []factProbe{
	{FactName, regexp.MustCompile(`\b(?:my name is|i'm|i am|call me) (\w+)`)},
	{FactLocation, regexp.MustCompile(`\b(?:i live in|i'm from|located in) ([\w\s]+)`)},
	{FactOccupation, regexp.MustCompile(`\b(?:i work as|i am a|i'm a) ([\w\s]+)`)},
	{FactLike, regexp.MustCompile(`\bi (?:like|love|enjoy|prefer) ([\w\s]+)`)},
	{FactDislike, regexp.MustCompile(`\bi (?:don't like|hate|dislike) ([\w\s]+)`)},
}

// notNames are words that follow "i'm" or "i am" without being a name
var notNames = map[string]bool{
	"a": true, "an": true, "the": true, "from": true, "in": true, "at": true,
	"not": true, "so": true, "very": true, "also": true, "just": true, "really": true,
	"going": true, "trying": true, "learning": true, "working": true, "looking": true,
	"here": true, "fine": true, "good": true, "ok": true, "okay": true, "sure": true,
	"sorry": true, "glad": true, "happy": true, "tired": true, "busy": true, "back": true,
	"done": true, "still": true, "currently": true, "interested": true, "new": true,
}

// ExtractedFact is one value pulled out of a message
type ExtractedFact struct {
	Field FactField
	Value string
}

// FactScrubber runs the fact probes over messages
type FactScrubber struct{}

// NewFactScrubber creates a new FactScrubber
func NewFactScrubber() *FactScrubber {
	return &FactScrubber{}
}

// Extract returns at most one fact per field, in probe order
func (fs *FactScrubber) Extract(message string) []ExtractedFact {
	lower := strings.ToLower(message)

	var facts []ExtractedFact
	for _, probe := range factProbes {
		var value string
		if probe.field == FactName {
			value = firstName(probe.pattern, lower)
		} else if m := probe.pattern.FindStringSubmatch(lower); m != nil {
			value = strings.TrimSpace(m[1])
		}
		if value == "" {
			continue
		}
		facts = append(facts, ExtractedFact{Field: probe.field, Value: value})
	}
	return facts
}

// firstName returns the first name-probe capture that is not a common filler word
func firstName(pattern *regexp.Regexp, lower string) string {
	for _, m := range pattern.FindAllStringSubmatch(lower, -1) {
		if !notNames[m[1]] {
			return capitalize(m[1])
		}
	}
	return ""
}

// Apply merges extracted facts into facts and returns the ones that changed something
func (fs *FactScrubber) Apply(facts *models.UserFacts, extracted []ExtractedFact) []ExtractedFact {
	var changed []ExtractedFact
	for _, f := range extracted {
		updated := false
		switch f.Field {
		case FactName:
			updated = facts.Name != f.Value
			facts.Name = f.Value
		case FactLocation:
			updated = facts.Location != f.Value
			facts.Location = f.Value
		case FactOccupation:
			updated = facts.Occupation != f.Value
			facts.Occupation = f.Value
		case FactLike:
			updated = facts.AddLike(f.Value)
		case FactDislike:
			updated = facts.AddDislike(f.Value)
		}
		if updated {
			changed = append(changed, f)
		}
	}
	return changed
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
