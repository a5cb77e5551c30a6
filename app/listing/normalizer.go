package listing

import (
	"fmt"
	"strconv"

	"yad2watch/app/yad2"
)

// FromRaw maps one raw feed record onto the canonical attribute set. Total
// over malformed input: missing text fields collapse to the Unknown sentinel
// and missing numeric fields to zero. The phone is filled in later by the
// contact resolver.
func FromRaw(raw yad2.RawListing) Listing {
	return Listing{
		Price:        raw.Price,
		Rooms:        raw.AdditionalDetails.RoomsCount,
		Street:       textOrUnknown(raw.Address.Street.Text),
		Neighborhood: textOrUnknown(raw.Address.Neighborhood.Text),
		City:         textOrUnknown(raw.Address.City.Text),
		Floor:        floorString(raw.Address.House.Floor),
		SquareMeters: raw.AdditionalDetails.SquareMeter,
		IsPrivate:    raw.AdType == "private",
		Token:        raw.Token,
	}
}

func textOrUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// floorString normalizes the floor attribute, which the upstream delivers
// either as a number or as text ("קרקע" for ground floor).
func floorString(v any) string {
	switch f := v.(type) {
	case nil:
		return Unknown
	case string:
		if f == "" {
			return Unknown
		}
		return f
	case float64:
		return strconv.FormatFloat(f, 'f', -1, 64)
	case int:
		return strconv.Itoa(f)
	default:
		return fmt.Sprint(f)
	}
}
