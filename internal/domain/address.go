package domain

import "strings"

// OpenStreetMap tag keys used when describing a feature.
const (
	TagHouseNumber  = "addr:housenumber"
	TagStreet       = "addr:street"
	TagCity         = "addr:city"
	TagState        = "addr:state"
	TagPostcode     = "addr:postcode"
	TagName         = "name"
	TagNameEn       = "name:en"
	TagOfficialName = "official_name"
	TagPhone        = "phone"
	TagContactPhone = "contact:phone"
)

const AddressNotAvailable = "Address not available"

// Field order is part of the output contract.
var addressTags = []string{TagHouseNumber, TagStreet, TagCity, TagState, TagPostcode}

// BuildAddress joins the present address tags with ", " in a fixed order:
// house number, street, city, state, postcode.
func BuildAddress(tags map[string]string) string {
	parts := make([]string, 0, len(addressTags))
	for _, key := range addressTags {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}

	if len(parts) == 0 {
		return AddressNotAvailable
	}
	return strings.Join(parts, ", ")
}

// firstTag returns the first non-empty value among keys.
func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}
