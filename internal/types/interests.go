package types

import "strings"

// InterestTag is a canonical label for a category of user intent, e.g. "sushi" or "museum".
type InterestTag string

// DefaultInterest is used when nothing could be extracted from a query.
const DefaultInterest InterestTag = "default"

// NormalizeTag lower-cases and trims a raw tag.
func NormalizeTag(raw string) InterestTag {
	return InterestTag(strings.ToLower(strings.TrimSpace(raw)))
}

// InterestSet is an ordered, duplicate-free collection of tags.
type InterestSet []InterestTag

// NewInterestSet merges duplicates and drops empty tags, keeping first-seen order.
func NewInterestSet(tags ...InterestTag) InterestSet {
	seen := make(map[InterestTag]struct{}, len(tags))
	set := make(InterestSet, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		set = append(set, t)
	}
	return set
}

// OrDefault returns the set itself, or the single sentinel tag when empty.
func (s InterestSet) OrDefault() InterestSet {
	if len(s) == 0 {
		return InterestSet{DefaultInterest}
	}
	return s
}

// IsDefault reports whether the set only carries the sentinel tag.
func (s InterestSet) IsDefault() bool {
	return len(s) == 1 && s[0] == DefaultInterest
}

func (s InterestSet) Strings() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = string(t)
	}
	return out
}

// Hint joins the tags into the free-text keyword passed to the place provider.
// The sentinel tag carries no meaning for the provider and is left out.
func (s InterestSet) Hint() string {
	parts := make([]string, 0, len(s))
	for _, t := range s {
		if t == DefaultInterest {
			continue
		}
		parts = append(parts, string(t))
	}
	return strings.Join(parts, " ")
}

// InterestSource tells which extraction stage produced an InterestSet.
type InterestSource string

const (
	InterestSourceClassifier InterestSource = "classifier"
	InterestSourceKeywords   InterestSource = "keywords"
	InterestSourceDefault    InterestSource = "default"
)
