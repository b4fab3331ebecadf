package domain

// Place holds the human-readable part of a resolved location.
// Reverse geocoding yields only a Place; any field may be empty.
type Place struct {
	Address string
	City    string
	State   string
	Country string
}

// IsEmpty reports whether no field is populated.
func (p Place) IsEmpty() bool {
	return p == Place{}
}

// A resolved place produced by the geocoding step.
type Location struct {
	Coordinates
	Place
}
