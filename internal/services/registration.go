package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"travel-ticket-service/internal/domain"
	"travel-ticket-service/internal/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

const (
	RegistrationKey    = "registration"
	DefaultPhoneRegion = "IN"
)

type RegistrationInput struct {
	FullName         string `json:"full_name" validate:"required,max=200"`
	PhoneNumber      string `json:"phone_number" validate:"required,max=32"`
	Email            string `json:"email" validate:"required,email"`
	EmergencyContact string `json:"emergency_contact" validate:"required,max=32"`
	City             string `json:"city" validate:"required,max=100"`
	OptIn            bool   `json:"opt_in"`
	Terms            bool   `json:"terms" validate:"eq=true"`
}

type storedRegistration struct {
	ID               string    `json:"id"`
	FullName         string    `json:"full_name"`
	PhoneNumber      string    `json:"phone_number"`
	Email            string    `json:"email"`
	EmergencyContact string    `json:"emergency_contact"`
	City             string    `json:"city"`
	OptIn            bool      `json:"opt_in"`
	Terms            bool      `json:"terms"`
	RegisteredAt     time.Time `json:"registered_at"`
}

// RegistrationService writes the traveler's sign-up record and answers
// whether the ticket flow is unlocked.
type RegistrationService struct {
	store    ports.ProfileStore
	clock    Clock
	region   string
	validate *validator.Validate
	log      *slog.Logger
}

func NewRegistrationService(store ports.ProfileStore, clock Clock, logger *slog.Logger) *RegistrationService {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{
		store:    store,
		clock:    clock,
		region:   DefaultPhoneRegion,
		validate: validator.New(),
		log:      logger,
	}
}

// Register validates and persists a registration, replacing any previous one.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (domain.Registration, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.EmergencyContact = strings.TrimSpace(in.EmergencyContact)
	in.City = strings.TrimSpace(in.City)

	if err := s.validate.Struct(in); err != nil {
		return domain.Registration{}, domain.InvalidInput("registration: %v", err)
	}

	reg := domain.Registration{
		ID:               uuid.NewString(),
		FullName:         in.FullName,
		PhoneNumber:      normalizePhone(in.PhoneNumber, s.region),
		Email:            strings.ToLower(in.Email),
		EmergencyContact: normalizePhone(in.EmergencyContact, s.region),
		City:             in.City,
		OptIn:            in.OptIn,
		Terms:            in.Terms,
		RegisteredAt:     s.clock.Now().UTC(),
	}

	b, err := json.Marshal(storedRegistration(reg))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("register: encode: %w", err)
	}
	if err := s.store.Put(ctx, RegistrationKey, b); err != nil {
		return domain.Registration{}, fmt.Errorf("register: %w", err)
	}

	return reg, nil
}

// Current returns the stored registration. An unreadable record is removed.
func (s *RegistrationService) Current(ctx context.Context) (domain.Registration, bool) {
	raw, ok, err := s.store.Get(ctx, RegistrationKey)
	if err != nil {
		s.log.WarnContext(ctx, "read registration failed", "err", err)
		return domain.Registration{}, false
	}
	if !ok {
		return domain.Registration{}, false
	}

	var stored storedRegistration
	if err := json.Unmarshal(raw, &stored); err != nil || stored.ID == "" || stored.FullName == "" {
		s.log.WarnContext(ctx, "discarding corrupt registration record", "err", err)
		if derr := s.store.Delete(ctx, RegistrationKey); derr != nil {
			s.log.WarnContext(ctx, "delete registration failed", "err", derr)
		}
		return domain.Registration{}, false
	}

	return domain.Registration(stored), true
}

// normalizePhone formats a number to E.164. Input that does not parse as a
// valid number for region is kept as typed, trimmed.
func normalizePhone(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
