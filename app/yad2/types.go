package yad2

import "encoding/json"

// RawListing is one advertisement record as the upstream feed delivers it.
// Only the fields the monitor consumes are decoded.
type RawListing struct {
	Token             string            `json:"token"`
	Price             int               `json:"price"`
	AdType            string            `json:"adType"`
	Address           Address           `json:"address"`
	AdditionalDetails AdditionalDetails `json:"additionalDetails"`
}

type Address struct {
	Street       TextField `json:"street"`
	Neighborhood TextField `json:"neighborhood"`
	City         TextField `json:"city"`
	House        House     `json:"house"`
}

type TextField struct {
	Text string `json:"text"`
}

type House struct {
	// Floor comes back as a number or as text, depending on the listing.
	Floor any `json:"floor"`
}

type AdditionalDetails struct {
	RoomsCount  float64 `json:"roomsCount"`
	SquareMeter float64 `json:"squareMeter"`
}

// feedResponse keeps the data container raw: the upstream groups results
// under varying category keys (private, agency, ...) and every list-valued
// key except "yad1" carries listings.
type feedResponse struct {
	Data       map[string]json.RawMessage `json:"data"`
	Pagination pagination                 `json:"pagination"`
}

type pagination struct {
	TotalPages int `json:"totalPages"`
}

type contactResponse struct {
	Data struct {
		BrokerPhone string `json:"brokerPhone"`
		Phone       string `json:"phone"`
	} `json:"data"`
}
