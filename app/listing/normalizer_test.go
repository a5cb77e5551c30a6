package listing

import (
	"testing"

	"yad2watch/app/yad2"
)

func TestFromRaw_CompleteListing(t *testing.T) {
	raw := yad2.RawListing{
		Token:  "abc123",
		Price:  2200000,
		AdType: "private",
		Address: yad2.Address{
			Street:       yad2.TextField{Text: "הרצל"},
			Neighborhood: yad2.TextField{Text: "מרכז"},
			City:         yad2.TextField{Text: "תל אביב"},
			House:        yad2.House{Floor: float64(3)},
		},
		AdditionalDetails: yad2.AdditionalDetails{
			RoomsCount:  3.5,
			SquareMeter: 85,
		},
	}

	l := FromRaw(raw)

	if l.Price != 2200000 {
		t.Errorf("Expected price 2200000, got %d", l.Price)
	}
	if l.Street != "הרצל" {
		t.Errorf("Expected street 'הרצל', got %s", l.Street)
	}
	if l.Floor != "3" {
		t.Errorf("Expected floor '3', got %s", l.Floor)
	}
	if l.Rooms != 3.5 {
		t.Errorf("Expected 3.5 rooms, got %v", l.Rooms)
	}
	if !l.IsPrivate {
		t.Error("Expected private listing")
	}
	if l.Token != "abc123" {
		t.Errorf("Expected token 'abc123', got %s", l.Token)
	}
}

func TestFromRaw_MissingFieldsCollapseToSentinels(t *testing.T) {
	raw := yad2.RawListing{
		Token: "abc123",
		Price: 1500000,
	}

	l := FromRaw(raw)

	if l.Street != Unknown {
		t.Errorf("Expected street sentinel, got %s", l.Street)
	}
	if l.Neighborhood != Unknown {
		t.Errorf("Expected neighborhood sentinel, got %s", l.Neighborhood)
	}
	if l.City != Unknown {
		t.Errorf("Expected city sentinel, got %s", l.City)
	}
	if l.Floor != Unknown {
		t.Errorf("Expected floor sentinel, got %s", l.Floor)
	}
	if l.Rooms != 0 {
		t.Errorf("Expected 0 rooms, got %v", l.Rooms)
	}
	if l.SquareMeters != 0 {
		t.Errorf("Expected 0 sqm, got %v", l.SquareMeters)
	}
	if l.IsPrivate {
		t.Error("Expected non-private listing for missing adType")
	}
}

func TestFromRaw_FloorVariants(t *testing.T) {
	tests := []struct {
		name     string
		floor    any
		expected string
	}{
		{"numeric floor", float64(5), "5"},
		{"textual ground floor", "קרקע", "קרקע"},
		{"missing floor", nil, Unknown},
		{"empty string floor", "", Unknown},
		{"fractional floor", float64(2.5), "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := yad2.RawListing{
				Token:   "x",
				Address: yad2.Address{House: yad2.House{Floor: tt.floor}},
			}

			l := FromRaw(raw)
			if l.Floor != tt.expected {
				t.Errorf("Expected floor %q, got %q", tt.expected, l.Floor)
			}
		})
	}
}

func TestKey_DerivedFromToken(t *testing.T) {
	key := Key("abc123")
	expected := "https://www.yad2.co.il/item/abc123"

	if key != expected {
		t.Errorf("Expected key %s, got %s", expected, key)
	}
}
