// Package categories maps interest tags to place provider category codes.
package categories

import (
	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// DefaultCategories is used when no tag in a set has a mapping.
var DefaultCategories = []types.CategoryCode{"establishment", "point_of_interest"}

// categoryTable is keyed by interest tag. It covers fewer tags than the
// keyword vocabulary; unmapped tags fall through to DefaultCategories.
// TODO: decide per tag whether the missing cuisines and activities
// (thai, seafood, hiking, ...) should get provider categories of their own.
var categoryTable = map[types.InterestTag][]types.CategoryCode{
	"restaurant":         {"restaurant"},
	"sushi":              {"sushi_restaurant"},
	"pizza":              {"pizza_restaurant"},
	"burger":             {"hamburger_restaurant"},
	"indian":             {"indian_restaurant"},
	"chinese":            {"chinese_restaurant"},
	"italian":            {"italian_restaurant"},
	"mexican":            {"mexican_restaurant"},
	"japanese":           {"japanese_restaurant"},
	"cafe":               {"cafe"},
	"bakery":             {"bakery"},
	"dessert":            {"bakery"},
	"bar":                {"bar"},
	"pub":                {"bar"},
	"nightclub":          {"night_club"},
	"hotel":              {"lodging"},
	"museum":             {"museum"},
	"art_gallery":        {"art_gallery"},
	"park":               {"park"},
	"zoo":                {"zoo"},
	"aquarium":           {"aquarium"},
	"amusement_park":     {"amusement_park"},
	"shopping_mall":      {"shopping_mall"},
	"grocery":            {"supermarket"},
	"supermarket":        {"supermarket"},
	"pharmacy":           {"pharmacy"},
	"hospital":           {"hospital"},
	"doctor":             {"doctor"},
	"dentist":            {"dentist"},
	"gym":                {"gym"},
	"spa":                {"spa"},
	"salon":              {"beauty_salon", "hair_care"},
	"atm":                {"atm"},
	"bank":               {"bank"},
	"gas_station":        {"gas_station"},
	"parking":            {"parking"},
	"airport":            {"airport"},
	"train_station":      {"train_station"},
	"movie_theater":      {"movie_theater"},
	"library":            {"library"},
	"tourist_attraction": {"tourist_attraction"},
	"temple":             {"hindu_temple"},
	"church":             {"church"},
	"mosque":             {"mosque"},
}

// Map returns the union of the categories of every tag in set, in tag order
// without duplicates. It never returns an empty slice.
func Map(set types.InterestSet) []types.CategoryCode {
	seen := make(map[types.CategoryCode]struct{})
	out := make([]types.CategoryCode, 0, len(set))
	for _, tag := range set {
		for _, code := range categoryTable[tag] {
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		return append([]types.CategoryCode(nil), DefaultCategories...)
	}
	return out
}

// Mapped reports whether tag has categories of its own.
func Mapped(tag types.InterestTag) bool {
	_, ok := categoryTable[tag]
	return ok
}
