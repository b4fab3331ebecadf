package dto

type LinkRequest struct {
	StationID string `json:"station_id"`
}

type LinkResponse struct {
	Station    *StationResponse `json:"station"`
	DistanceKm *float64         `json:"distance_km"`
}

type PositionRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}
