package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"travel-ticket-service/internal/api/dto"
	"travel-ticket-service/internal/ports"
	"travel-ticket-service/internal/services"
)

const maxRadiusMeters = 50000

// StationHandler serves station search and reverse geocoding.
type StationHandler struct {
	Session *services.Session
	// Device position source for ?near=me. Optional.
	Positions     ports.PositionProvider
	LocateTimeout time.Duration
}

// Search accepts ?q=<place>, ?lat=&lng= or ?near=me, plus an optional radius in meters.
func (h *StationHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radius := 0
	if raw := strings.TrimSpace(q.Get("radius")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRadiusMeters {
			writeError(w, r, http.StatusBadRequest, "radius must be between 1 and 50000")
			return
		}
		radius = n
	}

	var (
		res services.SearchResult
		err error
	)

	c, hasCoords, cerr := queryCoordinates(r)
	switch {
	case cerr != nil:
		writeDomainError(w, r, cerr)
		return

	case hasCoords:
		res, err = h.Session.Search(r.Context(), services.SearchQuery{Coordinates: &c, RadiusMeters: radius})

	case q.Get("near") == "me":
		if h.Positions == nil {
			writeError(w, r, http.StatusServiceUnavailable, "no position source configured")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), h.locateTimeout())
		defer cancel()
		res, err = h.Session.Locate(ctx, h.Positions, radius)

	default:
		res, err = h.Session.Search(r.Context(), services.SearchQuery{Place: q.Get("q"), RadiusMeters: radius})
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := dto.SearchResponse{
		Seq:      res.Seq,
		Center:   toCoordinatesResponse(res.Center),
		Place:    toPlaceResponse(res.Place),
		Stations: make([]dto.StationResponse, 0, len(res.Stations)),
	}
	for _, s := range res.Stations {
		out.Stations = append(out.Stations, toStationResponse(s))
	}

	writeJSON(w, r, http.StatusOK, out)
}

func (h *StationHandler) locateTimeout() time.Duration {
	if h.LocateTimeout > 0 {
		return h.LocateTimeout
	}
	return 10 * time.Second
}

// Reverse resolves ?lat=&lng= to a place. Upstream failures yield an empty place.
func (h *StationHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	c, ok, err := queryCoordinates(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}

	place, err := h.Session.ReverseGeocode(r.Context(), c)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPlaceResponse(place))
}
