package dto

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PlaceResponse struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type StationResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Coordinates CoordinatesResponse `json:"coordinates"`
	Address     string              `json:"address"`
	Contact     string              `json:"contact,omitempty"`
	DistanceKm  float64             `json:"distance_km"`
	City        string              `json:"city"`
	State       string              `json:"state"`
}

type SearchResponse struct {
	Seq      uint64              `json:"seq"`
	Center   CoordinatesResponse `json:"center"`
	Place    PlaceResponse       `json:"place"`
	Stations []StationResponse   `json:"stations"`
}
