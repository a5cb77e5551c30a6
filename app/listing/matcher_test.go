package listing

import "testing"

func baseListing() Listing {
	return Listing{
		Price:        2000000,
		Rooms:        3,
		Street:       "הרצל",
		Neighborhood: "מרכז",
		City:         "תל אביב",
		Floor:        "3",
		SquareMeters: 70,
		Phone:        "050-1111111",
	}
}

func TestMatcher_FindRepost_SamePhoneDifferentPrice(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	old := baseListing()
	candidate := baseListing()
	candidate.Price = 2100000
	candidate.SquareMeters = 71

	key, matched := m.FindRepost(candidate, []Entry{{Key: "old-key", Listing: old}})

	if matched == nil {
		t.Fatal("Expected a repost match")
	}
	if key != "old-key" {
		t.Errorf("Expected matched key 'old-key', got %s", key)
	}
	if matched.Price != 2000000 {
		t.Errorf("Expected matched price 2000000, got %d", matched.Price)
	}
}

func TestMatcher_FindRepost_SamePriceIsNotRepost(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	old := baseListing()
	candidate := baseListing()

	if _, matched := m.FindRepost(candidate, []Entry{{Key: "k", Listing: old}}); matched != nil {
		t.Error("Same price should not match under price-and-phone policy")
	}
}

func TestMatcher_FindRepost_DifferentPhoneIsNotRepost(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	old := baseListing()
	candidate := baseListing()
	candidate.Price = 2100000
	candidate.Phone = "052-2222222"

	if _, matched := m.FindRepost(candidate, []Entry{{Key: "k", Listing: old}}); matched != nil {
		t.Error("Different phone should not match under price-and-phone policy")
	}
}

func TestMatcher_FindRepost_EmptyPhonesNeverMatch(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	old := baseListing()
	old.Phone = ""
	candidate := baseListing()
	candidate.Price = 2100000
	candidate.Phone = ""

	if _, matched := m.FindRepost(candidate, []Entry{{Key: "k", Listing: old}}); matched != nil {
		t.Error("Two empty phones should not count as the same seller")
	}
}

func TestMatcher_FindRepost_AreaTolerance(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	tests := []struct {
		name        string
		oldArea     float64
		newArea     float64
		expectMatch bool
	}{
		{"identical area", 70, 70, true},
		{"within tolerance", 70, 72.5, true},
		{"at tolerance boundary", 70, 73, true},
		{"beyond tolerance", 70, 74, false},
		{"beyond tolerance below", 70, 66, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := baseListing()
			old.SquareMeters = tt.oldArea
			candidate := baseListing()
			candidate.Price = 2100000
			candidate.SquareMeters = tt.newArea

			_, matched := m.FindRepost(candidate, []Entry{{Key: "k", Listing: old}})
			if (matched != nil) != tt.expectMatch {
				t.Errorf("Expected match=%v for areas %v/%v", tt.expectMatch, tt.oldArea, tt.newArea)
			}
		})
	}
}

func TestMatcher_FindRepost_LocationMismatch(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	tests := []struct {
		name   string
		mutate func(*Listing)
	}{
		{"different street", func(l *Listing) { l.Street = "אלנבי" }},
		{"different city", func(l *Listing) { l.City = "רמת גן" }},
		{"different neighborhood", func(l *Listing) { l.Neighborhood = "צפון" }},
		{"different floor", func(l *Listing) { l.Floor = "4" }},
		{"different rooms", func(l *Listing) { l.Rooms = 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := baseListing()
			candidate := baseListing()
			candidate.Price = 2100000
			tt.mutate(&candidate)

			if _, matched := m.FindRepost(candidate, []Entry{{Key: "k", Listing: old}}); matched != nil {
				t.Error("Location mismatch should never match")
			}
		})
	}
}

func TestMatcher_FindRepost_UnknownFieldsCompareEqual(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	old := baseListing()
	old.Neighborhood = Unknown
	old.Floor = Unknown
	candidate := baseListing()
	candidate.Price = 2100000
	candidate.Neighborhood = Unknown
	candidate.Floor = Unknown

	if _, matched := m.FindRepost(candidate, []Entry{{Key: "k", Listing: old}}); matched == nil {
		t.Error("Two listings both missing a field should still match on it")
	}
}

func TestMatcher_FindRepost_LocationOnlyPolicy(t *testing.T) {
	m := NewMatcher(PolicyLocationOnly)

	old := baseListing()
	old.Phone = ""
	candidate := baseListing()
	candidate.Phone = ""

	// Same price and no phones: location-only still matches.
	if _, matched := m.FindRepost(candidate, []Entry{{Key: "k", Listing: old}}); matched == nil {
		t.Error("Location-only policy should match without price or phone checks")
	}
}

func TestMatcher_FindRepost_FirstMatchInScanOrder(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	first := baseListing()
	second := baseListing()
	second.Price = 1900000

	candidate := baseListing()
	candidate.Price = 2100000

	key, matched := m.FindRepost(candidate, []Entry{
		{Key: "first", Listing: first},
		{Key: "second", Listing: second},
	})

	if matched == nil {
		t.Fatal("Expected a match")
	}
	if key != "first" {
		t.Errorf("Expected first entry in scan order to win, got %s", key)
	}
}

func TestMatcher_FindRepost_NoEntries(t *testing.T) {
	m := NewMatcher(PolicyPriceAndPhone)

	key, matched := m.FindRepost(baseListing(), nil)
	if key != "" || matched != nil {
		t.Error("Expected no match against an empty store")
	}
}
