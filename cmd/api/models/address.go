package models

// DistrictRef identifies one district layer of a geocoded address.
// Either field is nil when the geocoder did not return that layer.
type DistrictRef struct {
	District *string `json:"district"`
	Label    *string `json:"label"`
}

// Districts are the three district layers resolved for an address
type Districts struct {
	Federal    DistrictRef `json:"federal"`
	StateUpper DistrictRef `json:"state_upper"`
	StateLower DistrictRef `json:"state_lower"`
}

// AddressMatch is the geocoder's answer for one address.
// Derived on every lookup, never persisted.
type AddressMatch struct {
	MatchedAddress string    `json:"matched_address,omitempty"`
	State          string    `json:"state"`
	Districts      Districts `json:"districts"`
}

// LookupSummary is the result of resolving and saving a user's representatives
type LookupSummary struct {
	Found      bool      `json:"found"`
	State      string    `json:"state"`
	SavedCount int       `json:"saved_count"`
	Districts  Districts `json:"districts"`
}
