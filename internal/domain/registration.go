package domain

import "time"

// Registration is the traveler's completed sign-up record.
// It gates access to the ticket flow.
type Registration struct {
	ID               string
	FullName         string
	PhoneNumber      string
	Email            string
	EmergencyContact string
	City             string
	OptIn            bool
	Terms            bool
	RegisteredAt     time.Time
}
