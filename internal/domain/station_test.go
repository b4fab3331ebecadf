package domain

import (
	"math"
	"testing"
)

func TestStationFromFeatureNamePreference(t *testing.T) {
	origin := Coordinates{Lat: 23.3441, Lng: 85.3096}
	pos := Coordinates{Lat: 23.35, Lng: 85.32}

	tests := []struct {
		tags map[string]string
		want string
	}{
		{map[string]string{"name": "Kotwali", "name:en": "Kotwali EN", "official_name": "Kotwali Thana"}, "Kotwali"},
		{map[string]string{"name:en": "Kotwali EN", "official_name": "Kotwali Thana"}, "Kotwali EN"},
		{map[string]string{"official_name": "Kotwali Thana"}, "Kotwali Thana"},
		{map[string]string{}, "Police Station"},
		{nil, "Police Station"},
	}

	for _, tc := range tests {
		s, ok := StationFromFeature(origin, PointFeature{ID: 1, Position: pos, TagSet: tc.tags})
		if !ok {
			t.Fatalf("expected station for tags %v", tc.tags)
		}
		if s.Name != tc.want {
			t.Errorf("name = %q, want %q", s.Name, tc.want)
		}
	}
}

func TestStationFromFeatureGeometry(t *testing.T) {
	origin := Coordinates{Lat: 23.3441, Lng: 85.3096}
	center := Coordinates{Lat: 23.36, Lng: 85.33}

	way := AreaFeature{Structure: KindWay, ID: 7, Center: &center, TagSet: map[string]string{
		"phone":       "+91-651-2345678",
		"addr:city":   "Ranchi",
		"addr:state":  "Jharkhand",
		"addr:street": "Main Road",
	}}
	s, ok := StationFromFeature(origin, way)
	if !ok {
		t.Fatal("expected way with center to convert")
	}
	if s.ID != "way_7" {
		t.Errorf("id = %q, want way_7", s.ID)
	}
	if s.Coordinates != center {
		t.Errorf("coordinates = %v, want %v", s.Coordinates, center)
	}
	if s.Contact != "+91-651-2345678" || s.City != "Ranchi" || s.State != "Jharkhand" {
		t.Errorf("unexpected tag-derived fields: %+v", s)
	}
	if s.Address != "Main Road, Ranchi, Jharkhand" {
		t.Errorf("address = %q", s.Address)
	}
	if math.Abs(s.DistanceKm-DistanceKm(origin, center)) > 1e-9 {
		t.Errorf("distance = %v, want %v", s.DistanceKm, DistanceKm(origin, center))
	}

	if _, ok := StationFromFeature(origin, AreaFeature{Structure: KindRelation, ID: 8}); ok {
		t.Error("relation without center should be dropped")
	}

	bad := Coordinates{Lat: math.NaN(), Lng: 85}
	if _, ok := StationFromFeature(origin, PointFeature{ID: 9, Position: bad}); ok {
		t.Error("node with invalid coordinates should be dropped")
	}
}

func TestFeatureIDDistinguishesKinds(t *testing.T) {
	c := Coordinates{Lat: 1, Lng: 1}
	node := FeatureID(PointFeature{ID: 42, Position: c})
	way := FeatureID(AreaFeature{Structure: KindWay, ID: 42, Center: &c})
	rel := FeatureID(AreaFeature{Structure: KindRelation, ID: 42, Center: &c})

	if node == way || way == rel || node == rel {
		t.Fatalf("ids must differ across kinds: %q %q %q", node, way, rel)
	}
}

func TestFallbackStations(t *testing.T) {
	origin := Coordinates{Lat: 23.3441, Lng: 85.3096}

	got := FallbackStations(origin)
	if len(got) != 3 {
		t.Fatalf("expected 3 fallback stations, got %d", len(got))
	}

	wantNames := []string{"Local Police Station", "Central Police Station", "Traffic Police Station"}
	for i, s := range got {
		if s.Name != wantNames[i] {
			t.Errorf("station %d name = %q, want %q", i, s.Name, wantNames[i])
		}
		if !s.Coordinates.IsValid() {
			t.Errorf("station %d has invalid coordinates %v", i, s.Coordinates)
		}
		if s.DistanceKm <= 0 || s.DistanceKm > 2 {
			t.Errorf("station %d distance = %v, want small positive", i, s.DistanceKm)
		}
		if s.Address != "Address not available" || s.City != "Unknown" || s.State != "Unknown" {
			t.Errorf("station %d placeholder fields wrong: %+v", i, s)
		}
	}

	if got[0].ID == got[1].ID || got[1].ID == got[2].ID {
		t.Errorf("fallback ids must be unique: %q %q %q", got[0].ID, got[1].ID, got[2].ID)
	}

	again := FallbackStations(origin)
	for i := range got {
		if got[i] != again[i] {
			t.Errorf("fallback not deterministic at %d: %+v vs %+v", i, got[i], again[i])
		}
	}
}
