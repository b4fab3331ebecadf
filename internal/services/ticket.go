package services

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"travel-ticket-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

const DefaultTimezone = "Asia/Kolkata"

type TicketInput struct {
	Destination string `json:"destination" validate:"required"`
	ReturnTime  string `json:"return_time" validate:"required,datetime=15:04"`
	Transport   string `json:"transport"`
	TravelDate  string `json:"travel_date" validate:"omitempty,datetime=2006-01-02"`
}

func (in TicketInput) trimmed() TicketInput {
	return TicketInput{
		Destination: strings.TrimSpace(in.Destination),
		ReturnTime:  strings.TrimSpace(in.ReturnTime),
		Transport:   strings.TrimSpace(in.Transport),
		TravelDate:  strings.TrimSpace(in.TravelDate),
	}
}

// TicketLifecycle owns the single active ticket and its one-second countdown.
//
// opMu serializes Open, Close and Shutdown so that stopping the running ticker
// and waiting for its goroutine never happens while mu is held.
type TicketLifecycle struct {
	opMu sync.Mutex

	mu        sync.Mutex
	ticket    *domain.Ticket
	returnAt  time.Time
	remaining int

	stop chan struct{}
	done chan struct{}

	clock    Clock
	loc      *time.Location
	validate *validator.Validate
}

func NewTicketLifecycle(clock Clock, loc *time.Location) *TicketLifecycle {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &TicketLifecycle{
		clock:    clock,
		loc:      loc,
		validate: validator.New(),
	}
}

// Open replaces any active ticket with a new one and starts its countdown.
// Input is validated before anything changes.
func (l *TicketLifecycle) Open(in TicketInput) (domain.Ticket, error) {
	in = in.trimmed()
	if err := l.validate.Struct(in); err != nil {
		return domain.Ticket{}, domain.InvalidInput("ticket: %v", err)
	}

	now := l.clock.Now()
	if in.TravelDate == "" {
		in.TravelDate = now.In(l.loc).Format(domain.DateLayout)
	}

	t := domain.Ticket{
		Destination: in.Destination,
		ReturnTime:  in.ReturnTime,
		Transport:   in.Transport,
		TravelDate:  in.TravelDate,
		CreatedAt:   now,
	}

	at, err := t.ReturnAt(l.loc)
	if err != nil {
		return domain.Ticket{}, domain.InvalidInput("%v", err)
	}

	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.stopTimer()

	l.mu.Lock()
	l.ticket = &t
	l.returnAt = at
	l.remaining = domain.SecondsUntil(now, at)
	l.mu.Unlock()

	l.startTimer()
	return t, nil
}

// Close discards the active ticket. It reports whether there was one.
func (l *TicketLifecycle) Close() bool {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.stopTimer()

	l.mu.Lock()
	defer l.mu.Unlock()

	had := l.ticket != nil
	l.ticket = nil
	l.returnAt = time.Time{}
	l.remaining = 0
	return had
}

// Status returns a snapshot of the countdown.
func (l *TicketLifecycle) Status() domain.Countdown {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statusLocked()
}

func (l *TicketLifecycle) statusLocked() domain.Countdown {
	if l.ticket == nil {
		return domain.Countdown{Display: domain.FormatCountdown(0)}
	}

	t := *l.ticket
	return domain.Countdown{
		Active:           true,
		Ticket:           &t,
		RemainingSeconds: l.remaining,
		Expired:          l.remaining == 0,
		Display:          domain.FormatCountdown(l.remaining),
	}
}

// Resync recomputes the remaining time from the wall clock, correcting drift
// accumulated while ticks were missed.
func (l *TicketLifecycle) Resync() (domain.Countdown, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ticket == nil {
		return l.statusLocked(), domain.ErrNoActiveTicket
	}
	l.remaining = domain.SecondsUntil(l.clock.Now(), l.returnAt)
	return l.statusLocked(), nil
}

// Shutdown releases the ticker without touching ticket state.
func (l *TicketLifecycle) Shutdown() {
	l.opMu.Lock()
	defer l.opMu.Unlock()
	l.stopTimer()
}

// Caller holds opMu.
func (l *TicketLifecycle) startTimer() {
	stop := make(chan struct{})
	done := make(chan struct{})
	l.stop, l.done = stop, done

	ticker := l.clock.NewTicker(time.Second)
	go l.run(ticker, stop, done)
}

// Caller holds opMu. Blocks until the countdown goroutine has exited.
func (l *TicketLifecycle) stopTimer() {
	if l.stop == nil {
		return
	}
	close(l.stop)
	<-l.done
	l.stop, l.done = nil, nil
}

func (l *TicketLifecycle) run(ticker Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			l.mu.Lock()
			if l.remaining > 0 {
				l.remaining--
			}
			l.mu.Unlock()
		}
	}
}

// LoadLocation resolves a zone name, falling back to UTC when unknown.
func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}
