package interests

import (
	"sort"
	"strings"
	"unicode"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// keywordTags maps surface terms found in free text to canonical interest tags.
// Multi-word terms are matched as phrases; plural "s"/"es" forms of the last
// word match too.
var keywordTags = map[string]types.InterestTag{
	// food
	"restaurant": "restaurant", "dinner": "restaurant", "lunch": "restaurant", "eat": "restaurant",
	"eatery": "restaurant", "diner": "restaurant", "food": "restaurant", "dining": "restaurant",
	"bistro": "restaurant", "buffet": "restaurant", "hungry": "restaurant", "meal": "restaurant",
	"sushi": "sushi", "sashimi": "sushi", "maki": "sushi", "nigiri": "sushi", "omakase": "sushi",
	"pizza": "pizza", "pizzeria": "pizza", "calzone": "pizza",
	"burger": "burger", "hamburger": "burger", "cheeseburger": "burger",
	"chinese": "chinese", "dim sum": "chinese", "dumpling": "chinese", "noodle": "chinese",
	"indian": "indian", "biryani": "indian", "curry": "indian", "dosa": "indian", "tandoori": "indian",
	"idli": "indian", "thali": "indian", "paneer": "indian",
	"italian": "italian", "pasta": "italian", "trattoria": "italian", "risotto": "italian",
	"mexican": "mexican", "taco": "mexican", "burrito": "mexican", "quesadilla": "mexican", "nacho": "mexican",
	"thai": "thai", "pad thai": "thai", "tom yum": "thai",
	"japanese": "japanese", "ramen": "japanese", "tempura": "japanese", "izakaya": "japanese", "udon": "japanese",
	"korean": "korean", "kimchi": "korean", "bibimbap": "korean", "korean bbq": "korean",
	"seafood": "seafood", "fish": "seafood", "lobster": "seafood", "oyster": "seafood", "crab": "seafood",
	"prawn": "seafood", "shrimp": "seafood",
	"steak": "steakhouse", "steakhouse": "steakhouse", "grill": "steakhouse", "barbecue": "steakhouse", "bbq": "steakhouse",
	"vegetarian": "vegetarian", "vegan": "vegetarian", "plant based": "vegetarian", "salad": "vegetarian",
	"bakery": "bakery", "bread": "bakery", "croissant": "bakery", "pastry": "bakery", "cake": "bakery", "baker": "bakery",
	"cafe": "cafe", "café": "cafe", "coffee": "cafe", "espresso": "cafe", "latte": "cafe", "cappuccino": "cafe",
	"tea": "cafe", "coffee shop": "cafe", "brunch": "cafe",
	"dessert": "dessert", "sweet": "dessert", "chocolate": "dessert", "waffle": "dessert", "donut": "dessert",
	"ice cream": "ice_cream", "gelato": "ice_cream", "frozen yogurt": "ice_cream", "sundae": "ice_cream",
	"fast food": "fast_food", "takeaway": "fast_food", "takeout": "fast_food", "drive thru": "fast_food",
	"fried chicken": "fast_food", "sandwich": "fast_food", "hot dog": "fast_food",
	"breakfast": "breakfast", "pancake": "breakfast", "omelette": "breakfast",

	// drinks & nightlife
	"bar": "bar", "cocktail": "bar", "drink": "bar", "beer": "bar", "whisky": "bar", "whiskey": "bar",
	"lounge": "bar", "rooftop": "bar", "happy hour": "bar",
	"pub": "pub", "tavern": "pub", "gastropub": "pub",
	"club": "nightclub", "nightclub": "nightclub", "disco": "nightclub", "dance": "nightclub", "party": "nightclub",
	"dj": "nightclub",
	"brewery": "brewery", "craft beer": "brewery", "microbrewery": "brewery", "taproom": "brewery",
	"winery": "winery", "wine": "winery", "vineyard": "winery", "wine bar": "winery",
	"nightlife": "nightlife", "night out": "nightlife", "live music": "nightlife", "karaoke": "nightlife",
	"concert": "nightlife", "jazz": "nightlife",

	// stay
	"hotel": "hotel", "stay": "hotel", "motel": "hotel", "resort": "hotel", "inn": "hotel", "lodge": "hotel",
	"accommodation": "hotel", "bnb": "hotel", "bed and breakfast": "hotel",
	"hostel": "hostel", "backpacker": "hostel", "dorm": "hostel",
	"camping": "camping", "campsite": "camping", "campground": "camping", "tent": "camping", "rv park": "camping",

	// culture & sights
	"museum": "museum", "exhibit": "museum", "exhibition": "museum", "history museum": "museum",
	"art": "art_gallery", "gallery": "art_gallery", "art gallery": "art_gallery", "painting": "art_gallery",
	"sculpture": "art_gallery",
	"park": "park", "garden": "park", "playground": "park", "picnic": "park", "botanical": "park",
	"beach": "beach", "seaside": "beach", "coast": "beach", "surf": "beach", "sea": "beach",
	"zoo": "zoo", "wildlife": "zoo", "safari": "zoo", "animal": "zoo",
	"aquarium": "aquarium", "marine": "aquarium",
	"amusement park": "amusement_park", "theme park": "amusement_park", "roller coaster": "amusement_park",
	"water park": "amusement_park", "fun fair": "amusement_park",
	"temple": "temple", "shrine": "temple", "pagoda": "temple", "gurudwara": "temple",
	"church": "church", "cathedral": "church", "chapel": "church", "basilica": "church",
	"mosque": "mosque", "masjid": "mosque",
	"historical": "historical", "history": "historical", "heritage": "historical", "ruins": "historical",
	"castle": "historical", "palace": "historical", "fort": "historical", "ancient": "historical",
	"monument": "monument", "memorial": "monument", "statue": "monument", "landmark": "monument",
	"tourist": "tourist_attraction", "attraction": "tourist_attraction", "sightseeing": "tourist_attraction",
	"sights": "tourist_attraction", "things to do": "tourist_attraction", "must see": "tourist_attraction",
	"viewpoint": "viewpoint", "view": "viewpoint", "lookout": "viewpoint", "sunset": "viewpoint", "scenic": "viewpoint",
	"hiking": "hiking", "hike": "hiking", "trail": "hiking", "trek": "hiking", "trekking": "hiking",
	"mountain": "hiking", "waterfall": "hiking",
	"lake": "nature", "river": "nature", "forest": "nature", "nature": "nature", "outdoor": "nature",

	// shopping
	"mall": "shopping_mall", "shopping": "shopping_mall", "shopping mall": "shopping_mall",
	"shopping center": "shopping_mall", "outlet": "shopping_mall",
	"clothes": "clothing", "clothing": "clothing", "fashion": "clothing", "boutique": "clothing", "shoes": "clothing",
	"apparel": "clothing",
	"books": "bookstore", "bookstore": "bookstore", "bookshop": "bookstore",
	"electronics": "electronics", "phone": "electronics", "laptop": "electronics", "computer": "electronics",
	"gadget": "electronics",
	"supermarket": "supermarket", "hypermarket": "supermarket",
	"grocery": "grocery", "groceries": "grocery", "vegetables": "grocery", "fruit": "grocery", "market": "grocery",
	"convenience store": "grocery",
	"hardware": "hardware_store", "hardware store": "hardware_store", "tools": "hardware_store",
	"florist": "florist", "flower": "florist", "bouquet": "florist",
	"pet store": "pet_store", "pet shop": "pet_store", "pet food": "pet_store",
	"jewelry": "jewelry", "jewellery": "jewelry", "jeweler": "jewelry",
	"souvenir": "souvenir", "gift": "souvenir", "handicraft": "souvenir",

	// health
	"pharmacy": "pharmacy", "chemist": "pharmacy", "drugstore": "pharmacy", "medicine": "pharmacy",
	"medical store": "pharmacy",
	"hospital": "hospital", "emergency": "hospital", "clinic": "hospital",
	"doctor": "doctor", "physician": "doctor", "gp": "doctor", "pediatrician": "doctor",
	"dentist": "dentist", "dental": "dentist", "orthodontist": "dentist", "tooth": "dentist", "teeth": "dentist",
	"vet": "veterinary", "veterinary": "veterinary", "veterinarian": "veterinary", "animal hospital": "veterinary",
	"optician": "optician", "eye doctor": "optician", "glasses": "optician",

	// wellness & sport
	"gym": "gym", "fitness": "gym", "workout": "gym", "crossfit": "gym", "exercise": "gym",
	"spa": "spa", "massage": "spa", "sauna": "spa", "wellness": "spa",
	"salon": "salon", "haircut": "salon", "barber": "salon", "hairdresser": "salon", "manicure": "salon",
	"pedicure": "salon", "nail": "salon",
	"yoga": "yoga", "meditation": "yoga", "pilates": "yoga",
	"swimming": "swimming", "swimming pool": "swimming", "pool": "swimming",
	"stadium": "stadium", "arena": "stadium", "football": "stadium", "cricket": "stadium",
	"bowling": "bowling", "arcade": "arcade", "gaming": "arcade",
	"golf": "golf", "tennis": "sports", "sport": "sports", "sports": "sports", "climbing": "sports",

	// money
	"atm": "atm", "cash": "atm", "cash machine": "atm", "withdraw": "atm",
	"bank": "bank", "banking": "bank",
	"currency exchange": "currency_exchange", "money exchange": "currency_exchange", "forex": "currency_exchange",

	// transport
	"gas": "gas_station", "petrol": "gas_station", "fuel": "gas_station", "gas station": "gas_station",
	"petrol pump": "gas_station",
	"ev charging": "ev_charging", "charging station": "ev_charging",
	"parking": "parking", "park my car": "parking", "garage": "parking",
	"mechanic": "car_repair", "car repair": "car_repair", "tyre": "car_repair", "tire": "car_repair",
	"car wash": "car_wash",
	"car rental": "car_rental", "rent a car": "car_rental", "rental car": "car_rental",
	"bike rental": "bike_rental", "scooter rental": "bike_rental",
	"airport": "airport", "flight": "airport",
	"train": "train_station", "railway": "train_station", "train station": "train_station",
	"bus": "bus_station", "bus stop": "bus_station", "bus station": "bus_station",
	"metro": "subway", "subway": "subway", "underground": "subway",
	"taxi": "taxi", "cab": "taxi",

	// entertainment & civic
	"movie": "movie_theater", "movies": "movie_theater", "cinema": "movie_theater", "film": "movie_theater",
	"theater": "theater", "theatre": "theater", "opera": "theater", "musical": "theater",
	"library": "library",
	"school": "school", "college": "university", "university": "university", "campus": "university",
	"post office": "post_office", "courier": "post_office", "mail": "post_office",
	"police": "police", "police station": "police",
	"laundry": "laundry", "laundromat": "laundry", "dry cleaning": "laundry",
	"coworking": "coworking", "co-working": "coworking", "workspace": "coworking",
	"wifi": "cafe",
}

type keywordEntry struct {
	phrase string
	tag    types.InterestTag
}

// keywordIndex holds the table with pre-normalised phrases, longest first, so
// output is independent of map iteration order.
var keywordIndex = buildKeywordIndex()

func buildKeywordIndex() []keywordEntry {
	entries := make([]keywordEntry, 0, len(keywordTags))
	for kw, tag := range keywordTags {
		phrase := normalizeText(kw)
		if phrase == "" {
			continue
		}
		entries = append(entries, keywordEntry{phrase: phrase, tag: tag})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].phrase) != len(entries[j].phrase) {
			return len(entries[i].phrase) > len(entries[j].phrase)
		}
		return entries[i].phrase < entries[j].phrase
	})
	return entries
}

// Vocabulary returns the closed set of canonical tags, sorted.
func Vocabulary() []types.InterestTag {
	seen := make(map[types.InterestTag]struct{})
	for _, tag := range keywordTags {
		seen[tag] = struct{}{}
	}
	out := make([]types.InterestTag, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InVocabulary reports whether tag is a canonical tag.
func InVocabulary(tag types.InterestTag) bool {
	_, ok := vocabulary[tag]
	return ok
}

var vocabulary = func() map[types.InterestTag]struct{} {
	m := make(map[types.InterestTag]struct{})
	for _, tag := range keywordTags {
		m[tag] = struct{}{}
	}
	return m
}()

// MatchKeywords returns the tags whose keywords occur in text, ordered by where
// they first occur. It returns an empty set when nothing matches.
func MatchKeywords(text string) types.InterestSet {
	normalized := normalizeText(text)
	if normalized == "" {
		return types.InterestSet{}
	}
	padded := " " + normalized + " "

	first := make(map[types.InterestTag]int)
	for _, e := range keywordIndex {
		pos := phraseIndex(padded, e.phrase)
		if pos < 0 {
			continue
		}
		if prev, ok := first[e.tag]; !ok || pos < prev {
			first[e.tag] = pos
		}
	}

	tags := make([]types.InterestTag, 0, len(first))
	for tag := range first {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if first[tags[i]] != first[tags[j]] {
			return first[tags[i]] < first[tags[j]]
		}
		return tags[i] < tags[j]
	})
	return types.NewInterestSet(tags...)
}

// phraseIndex finds phrase on word boundaries in padded, allowing a plural
// suffix on the last word.
func phraseIndex(padded, phrase string) int {
	best := -1
	for _, suffix := range []string{"", "s", "es"} {
		if i := strings.Index(padded, " "+phrase+suffix+" "); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

// normalizeText lower-cases text and collapses every run of characters that
// are not letters or digits into a single space.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range strings.ToLower(text) {
		if isWordRune(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
