package domain

import "testing"

func TestBuildAddress(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want string
	}{
		{"empty", map[string]string{}, "Address not available"},
		{"nil", nil, "Address not available"},
		{"unrelated tags only", map[string]string{"name": "Kotwali", "amenity": "police"}, "Address not available"},
		{
			"all fields",
			map[string]string{
				"addr:postcode":    "834001",
				"addr:state":       "Jharkhand",
				"addr:city":        "Ranchi",
				"addr:street":      "Main Road",
				"addr:housenumber": "12",
			},
			"12, Main Road, Ranchi, Jharkhand, 834001",
		},
		{
			"sparse",
			map[string]string{"addr:postcode": "834001", "addr:street": "Main Road"},
			"Main Road, 834001",
		},
		{
			"empty values skipped",
			map[string]string{"addr:city": "", "addr:state": "Jharkhand"},
			"Jharkhand",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildAddress(tc.tags); got != tc.want {
				t.Errorf("BuildAddress() = %q, want %q", got, tc.want)
			}
		})
	}
}
