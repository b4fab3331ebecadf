package handlers

import (
	"net/http"
	"travel-ticket-service/internal/api/dto"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/services"
)

type RegistrationHandler struct {
	Session *services.Session
}

func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RegistrationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reg, err := h.Session.Register(r.Context(), services.RegistrationInput{
		FullName:         req.FullName,
		PhoneNumber:      req.PhoneNumber,
		Email:            req.Email,
		EmergencyContact: req.EmergencyContact,
		City:             req.City,
		OptIn:            req.OptIn,
		Terms:            req.Terms,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toRegistrationResponse(reg))
}

func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.Session.Registration(r.Context())
	if !ok {
		writeError(w, r, http.StatusNotFound, "not registered")
		return
	}
	writeJSON(w, r, http.StatusOK, toRegistrationResponse(reg))
}

func toRegistrationResponse(reg domain.Registration) dto.RegistrationResponse {
	return dto.RegistrationResponse{
		ID:               reg.ID,
		FullName:         reg.FullName,
		PhoneNumber:      reg.PhoneNumber,
		Email:            reg.Email,
		EmergencyContact: reg.EmergencyContact,
		City:             reg.City,
		OptIn:            reg.OptIn,
		RegisteredAt:     reg.RegisteredAt,
	}
}
