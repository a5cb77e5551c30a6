package listing

// Policy selects the final discriminator the matcher applies on top of the
// location, floor, rooms and area comparison.
type Policy string

const (
	// PolicyPriceAndPhone additionally requires a differing price and equal,
	// non-empty phone numbers: same seller, reposted at a new price.
	PolicyPriceAndPhone Policy = "price-and-phone"
	// PolicyLocationOnly applies no price or phone check at all, trading
	// precision for recall when phones are not resolved at match time.
	PolicyLocationOnly Policy = "location-only"
)

// AreaTolerance is the allowed square-meter difference between two
// advertisements of the same apartment, absorbing upstream rounding.
const AreaTolerance = 3.0

// Matcher decides whether an unseen listing is a probable repost of a
// previously seen one.
type Matcher struct {
	policy Policy
}

func NewMatcher(policy Policy) *Matcher {
	return &Matcher{policy: policy}
}

func (m *Matcher) Policy() Policy {
	return m.policy
}

// FindRepost scans the entries in order and returns the key and listing of
// the first entry the candidate matches, or ("", nil) when there is none.
// Store sizes stay in the hundreds, so a linear scan is fine.
func (m *Matcher) FindRepost(candidate Listing, entries []Entry) (string, *Listing) {
	for _, e := range entries {
		if m.matches(candidate, e.Listing) {
			matched := e.Listing
			return e.Key, &matched
		}
	}
	return "", nil
}

func (m *Matcher) matches(candidate, old Listing) bool {
	// Unknown == Unknown holds here: two listings both missing a field count
	// as matching on that field.
	if old.City != candidate.City ||
		old.Neighborhood != candidate.Neighborhood ||
		old.Street != candidate.Street ||
		old.Floor != candidate.Floor ||
		old.Rooms != candidate.Rooms {
		return false
	}

	if diff := old.SquareMeters - candidate.SquareMeters; diff > AreaTolerance || diff < -AreaTolerance {
		return false
	}

	if m.policy == PolicyPriceAndPhone {
		if old.Price == candidate.Price {
			return false
		}
		if old.Phone == "" || candidate.Phone == "" || old.Phone != candidate.Phone {
			return false
		}
	}

	return true
}
