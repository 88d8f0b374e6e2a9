package types

import (
	"sort"

	"github.com/google/uuid"
)

// AffinityRecord maps each interest tag to how many searches it appeared in.
type AffinityRecord map[InterestTag]int64

// AffinityEntry is one row of an AffinityRecord.
type AffinityEntry struct {
	Tag   InterestTag `json:"tag"`
	Count int64       `json:"count"`
}

// Entries returns the record sorted by count desc, then tag asc.
func (a AffinityRecord) Entries() []AffinityEntry {
	out := make([]AffinityEntry, 0, len(a))
	for tag, count := range a {
		out = append(out, AffinityEntry{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// AffinityResponse is returned by the affinity endpoint.
type AffinityResponse struct {
	UserID    uuid.UUID       `json:"user_id"`
	Interests []AffinityEntry `json:"interests"`
}
