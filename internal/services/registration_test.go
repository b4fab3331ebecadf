package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"travel-ticket-service/internal/adapters/store"
	"travel-ticket-service/internal/domain"

	"github.com/google/uuid"
)

func validRegistration() RegistrationInput {
	return RegistrationInput{
		FullName:         " Asha Verma ",
		PhoneNumber:      "98765 43210",
		Email:            "Asha@Example.com",
		EmergencyContact: "12345",
		City:             "Ranchi",
		OptIn:            true,
		Terms:            true,
	}
}

func TestRegisterPersistsNormalizedRecord(t *testing.T) {
	ps := store.NewMemoryProfileStore()
	now := time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC)
	svc := NewRegistrationService(ps, newFakeClock(now), nil)

	reg, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := uuid.Parse(reg.ID); err != nil {
		t.Fatalf("id %q is not a uuid: %v", reg.ID, err)
	}
	if reg.FullName != "Asha Verma" || reg.Email != "asha@example.com" {
		t.Fatalf("fields not trimmed/normalized: %+v", reg)
	}
	if reg.PhoneNumber != "+919876543210" {
		t.Fatalf("phone = %q, want E.164", reg.PhoneNumber)
	}
	if reg.EmergencyContact != "12345" {
		t.Fatalf("unparseable contact should be kept, got %q", reg.EmergencyContact)
	}
	if !reg.RegisteredAt.Equal(now) {
		t.Fatalf("registered at %v, want %v", reg.RegisteredAt, now)
	}

	got, ok := NewRegistrationService(ps, nil, nil).Current(context.Background())
	if !ok {
		t.Fatal("registration not found after register")
	}
	if got.ID != reg.ID || got.PhoneNumber != reg.PhoneNumber {
		t.Fatalf("read back %+v, want %+v", got, reg)
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := map[string]func(*RegistrationInput){
		"terms not accepted": func(in *RegistrationInput) { in.Terms = false },
		"bad email":          func(in *RegistrationInput) { in.Email = "not-an-email" },
		"blank name":         func(in *RegistrationInput) { in.FullName = "   " },
		"missing city":       func(in *RegistrationInput) { in.City = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ps := store.NewMemoryProfileStore()
			in := validRegistration()
			mutate(&in)

			_, err := NewRegistrationService(ps, nil, nil).Register(context.Background(), in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if _, ok, _ := ps.Get(context.Background(), RegistrationKey); ok {
				t.Fatal("invalid registration was persisted")
			}
		})
	}
}

func TestCurrentRegistrationDiscardsCorruptRecord(t *testing.T) {
	ps := store.NewMemoryProfileStore()
	_ = ps.Put(context.Background(), RegistrationKey, []byte(`{"full_name": 12}`))

	if _, ok := NewRegistrationService(ps, nil, nil).Current(context.Background()); ok {
		t.Fatal("corrupt registration accepted")
	}
	if _, ok, _ := ps.Get(context.Background(), RegistrationKey); ok {
		t.Fatal("corrupt registration not deleted")
	}
}
