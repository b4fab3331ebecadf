package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Ticket is a time-boxed travel plan. It is never partially updated:
// closing discards it and the next open replaces it.
type Ticket struct {
	Destination string
	ReturnTime  string
	Transport   string
	TravelDate  string
	CreatedAt   time.Time
}

// ReturnAt combines TravelDate and ReturnTime in loc.
func (t Ticket) ReturnAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	date := strings.TrimSpace(t.TravelDate)
	clock := strings.TrimSpace(t.ReturnTime)

	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("ticket return time %q on %q: %w", clock, date, err)
	}
	return at, nil
}

// SecondsUntil returns whole seconds from now until at, floored at zero.
func SecondsUntil(now, at time.Time) int {
	d := at.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// FormatCountdown renders seconds as zero-padded HH:MM:SS.
// Negative input is treated as zero.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Countdown is a snapshot of the ticket lifecycle.
// Expired accompanies the zeroed duration; it does not end the ticket.
type Countdown struct {
	Active           bool
	Ticket           *Ticket
	RemainingSeconds int
	Expired          bool
	Display          string
}
