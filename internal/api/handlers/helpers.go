package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"travel-ticket-service/internal/api/dto"
	"travel-ticket-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Unclassified errors are logged and reported as 500 without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nf *domain.NotFoundError
		ge *domain.GeocodeError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &nf):
		writeError(w, r, http.StatusNotFound, nf.Error())
	case errors.Is(err, domain.ErrNoActiveTicket):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotRegistered):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrSuperseded):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "timed out")
	case errors.As(err, &ge):
		slog.WarnContext(r.Context(), "geocoding failed", "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusBadGateway, "geocoding service unavailable")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads exactly one JSON object and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// queryCoordinates parses lat/lng query parameters. present is false when
// neither is given.
func queryCoordinates(r *http.Request) (c domain.Coordinates, present bool, err error) {
	q := r.URL.Query()
	rawLat, rawLng := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lng"))
	if rawLat == "" && rawLng == "" {
		return domain.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return domain.Coordinates{}, true, domain.InvalidInput("lat must be a number")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return domain.Coordinates{}, true, domain.InvalidInput("lng must be a number")
	}

	c = domain.Coordinates{Lat: lat, Lng: lng}
	if !c.IsValid() {
		return domain.Coordinates{}, true, domain.InvalidInput("lat and lng must be finite")
	}
	return c, true, nil
}

func toCoordinatesResponse(c domain.Coordinates) dto.CoordinatesResponse {
	return dto.CoordinatesResponse{Lat: c.Lat, Lng: c.Lng}
}

func toPlaceResponse(p domain.Place) dto.PlaceResponse {
	return dto.PlaceResponse{Address: p.Address, City: p.City, State: p.State, Country: p.Country}
}

func toStationResponse(s domain.PoliceStation) dto.StationResponse {
	return dto.StationResponse{
		ID:          s.ID,
		Name:        s.Name,
		Coordinates: toCoordinatesResponse(s.Coordinates),
		Address:     s.Address,
		Contact:     s.Contact,
		DistanceKm:  s.DistanceKm,
		City:        s.City,
		State:       s.State,
	}
}
