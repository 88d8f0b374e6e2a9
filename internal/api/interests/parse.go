package interests

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

var (
	errNoArray = errors.New("no JSON array in classifier response")

	arrayPattern = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// parseTagArray decodes the first array-like substring of a classifier
// response. Tags outside the vocabulary are dropped.
func parseTagArray(response string) (types.InterestSet, error) {
	candidate := arrayPattern.FindString(response)
	if candidate == "" {
		return nil, errNoArray
	}

	var raw []string
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode classifier tags: %w", err)
	}

	tags := make([]types.InterestTag, 0, len(raw))
	for _, r := range raw {
		tag := types.NormalizeTag(r)
		if InVocabulary(tag) {
			tags = append(tags, tag)
		}
	}
	return types.NewInterestSet(tags...), nil
}
