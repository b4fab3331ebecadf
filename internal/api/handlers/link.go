package handlers

import (
	"net/http"
	"travel-ticket-service/internal/api/dto"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/services"
)

// PositionSink receives device position updates for live tracking.
type PositionSink interface {
	Push(c domain.Coordinates) bool
}

type LinkHandler struct {
	Session   *services.Session
	Positions PositionSink
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.Session.LinkCandidate(r.Context(), req.StationID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, h.linkResponse())
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Unlink(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get returns the linked station. Optional ?lat=&lng= updates the position first.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok, err := queryCoordinates(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if ok {
		if err := h.Session.UpdatePosition(c); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, h.linkResponse())
}

// Position records a device position update and answers with the live distance.
func (h *LinkHandler) Position(w http.ResponseWriter, r *http.Request) {
	var req dto.PositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}

	c := domain.Coordinates{Lat: *req.Lat, Lng: *req.Lng}
	if err := h.Session.UpdatePosition(c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if h.Positions != nil {
		h.Positions.Push(c)
	}
	writeJSON(w, r, http.StatusOK, h.linkResponse())
}

func (h *LinkHandler) linkResponse() dto.LinkResponse {
	var res dto.LinkResponse
	if st := h.Session.Linked(); st != nil {
		sr := toStationResponse(*st)
		res.Station = &sr
	}
	if d, ok := h.Session.LinkDistance(); ok {
		res.DistanceKm = &d
	}
	return res
}
