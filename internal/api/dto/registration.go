package dto

import "time"

type RegistrationRequest struct {
	FullName         string `json:"full_name"`
	PhoneNumber      string `json:"phone_number"`
	Email            string `json:"email"`
	EmergencyContact string `json:"emergency_contact"`
	City             string `json:"city"`
	OptIn            bool   `json:"opt_in"`
	Terms            bool   `json:"terms"`
}

type RegistrationResponse struct {
	ID               string    `json:"id"`
	FullName         string    `json:"full_name"`
	PhoneNumber      string    `json:"phone_number"`
	Email            string    `json:"email"`
	EmergencyContact string    `json:"emergency_contact"`
	City             string    `json:"city"`
	OptIn            bool      `json:"opt_in"`
	RegisteredAt     time.Time `json:"registered_at"`
}
