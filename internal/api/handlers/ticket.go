package handlers

import (
	"net/http"
	"travel-ticket-service/internal/api/dto"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/services"
)

const expiredMessage = "Time Expired!"

type TicketHandler struct {
	Session *services.Session
}

func (h *TicketHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.TicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.Session.OpenTicket(r.Context(), services.TicketInput{
		Destination: req.Destination,
		ReturnTime:  req.ReturnTime,
		Transport:   req.Transport,
		TravelDate:  req.TravelDate,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toStatusResponse(h.Session.TicketStatus()))
}

func (h *TicketHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toStatusResponse(h.Session.TicketStatus()))
}

func (h *TicketHandler) Resync(w http.ResponseWriter, r *http.Request) {
	st, err := h.Session.ResyncTicket()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toStatusResponse(st))
}

// Close is idempotent: closing without an active ticket still answers 204.
func (h *TicketHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.Session.CloseTicket()
	w.WriteHeader(http.StatusNoContent)
}

func toStatusResponse(c domain.Countdown) dto.TicketStatusResponse {
	res := dto.TicketStatusResponse{
		Active:           c.Active,
		RemainingSeconds: c.RemainingSeconds,
		Display:          c.Display,
		Expired:          c.Expired,
	}
	if c.Ticket != nil {
		res.Ticket = &dto.TicketResponse{
			Destination: c.Ticket.Destination,
			ReturnTime:  c.Ticket.ReturnTime,
			Transport:   c.Ticket.Transport,
			TravelDate:  c.Ticket.TravelDate,
			CreatedAt:   c.Ticket.CreatedAt,
		}
	}
	if c.Expired {
		res.Message = expiredMessage
	}
	return res
}
