package dto

import "time"

type TicketRequest struct {
	Destination string `json:"destination"`
	ReturnTime  string `json:"return_time"`
	Transport   string `json:"transport"`
	TravelDate  string `json:"travel_date"`
}

type TicketResponse struct {
	Destination string    `json:"destination"`
	ReturnTime  string    `json:"return_time"`
	Transport   string    `json:"transport,omitempty"`
	TravelDate  string    `json:"travel_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type TicketStatusResponse struct {
	Active           bool            `json:"active"`
	Ticket           *TicketResponse `json:"ticket"`
	RemainingSeconds int             `json:"remaining_seconds"`
	Display          string          `json:"display"`
	Expired          bool            `json:"expired"`
	Message          string          `json:"message,omitempty"`
}
