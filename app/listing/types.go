package listing

// Unknown is the sentinel stored for text attributes the upstream did not
// provide. Two Unknown values compare as equal in the matcher.
const Unknown = "לא ידוע"

const itemBaseURL = "https://www.yad2.co.il/item/"

// Listing is the canonical, sentinel-defaulted attribute set of one
// advertisement. Numeric fields default to zero, never null, so comparisons
// stay total. The JSON tags define the persisted state file format and must
// round-trip exactly.
type Listing struct {
	Price        int     `json:"price"`
	Rooms        float64 `json:"rooms"`
	Street       string  `json:"street"`
	Neighborhood string  `json:"neighborhood"`
	City         string  `json:"city"`
	Floor        string  `json:"floor"`
	SquareMeters float64 `json:"sqm"`
	Phone        string  `json:"phone"`
	IsPrivate    bool    `json:"is_private"`
	Token        string  `json:"token"`
}

// Entry pairs a stored listing with its key for matcher scans.
type Entry struct {
	Key     string
	Listing Listing
}

// Key derives the stable listing key (the canonical item URL) from the
// upstream token. One key identifies one advertisement instance, not one
// physical apartment.
func Key(token string) string {
	return itemBaseURL + token
}
