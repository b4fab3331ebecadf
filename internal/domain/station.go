package domain

import "fmt"

const DefaultStationName = "Police Station"

// PoliceStation is a candidate check-in point returned by the station resolver.
// ID is unique within one resolution; DistanceKm is measured from the query point.
type PoliceStation struct {
	ID          string
	Name        string
	Coordinates Coordinates
	Address     string
	Contact     string
	DistanceKm  float64
	City        string
	State       string
}

// StationFromFeature converts a feature into a station measured from origin.
// It returns false when the feature has no usable representative coordinate.
func StationFromFeature(origin Coordinates, f Feature) (PoliceStation, bool) {
	pos, ok := f.RepresentativeCoordinates()
	if !ok {
		return PoliceStation{}, false
	}

	tags := f.Tags()
	if tags == nil {
		tags = map[string]string{}
	}

	name := firstTag(tags, TagName, TagNameEn, TagOfficialName)
	if name == "" {
		name = DefaultStationName
	}

	return PoliceStation{
		ID:          FeatureID(f),
		Name:        name,
		Coordinates: pos,
		Address:     BuildAddress(tags),
		Contact:     firstTag(tags, TagPhone, TagContactPhone),
		DistanceKm:  DistanceKm(origin, pos),
		City:        tags[TagCity],
		State:       tags[TagState],
	}, true
}

type fallbackOffset struct {
	name       string
	dLat, dLng float64
}

var fallbackOffsets = []fallbackOffset{
	{name: "Local Police Station", dLat: 0.01, dLng: 0.01},
	{name: "Central Police Station", dLat: -0.01, dLng: -0.01},
	{name: "Traffic Police Station", dLat: 0.005, dLng: -0.005},
}

const unknownRegion = "Unknown"

// FallbackStations returns the fixed synthetic set used when the feature
// service cannot be reached. The output depends only on origin.
func FallbackStations(origin Coordinates) []PoliceStation {
	out := make([]PoliceStation, 0, len(fallbackOffsets))
	for i, s := range fallbackOffsets {
		pos := origin.Offset(s.dLat, s.dLng)
		out = append(out, PoliceStation{
			ID:          fmt.Sprintf("fallback_%d", i),
			Name:        s.name,
			Coordinates: pos,
			Address:     AddressNotAvailable,
			DistanceKm:  DistanceKm(origin, pos),
			City:        unknownRegion,
			State:       unknownRegion,
		})
	}
	return out
}
