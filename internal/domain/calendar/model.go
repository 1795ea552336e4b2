package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Event type constants.
const (
	TypeSession = "session" // attendance session
	TypeHoliday = "holiday" // Islamic holiday supplied by the backend
)

// GridSize is the fixed number of cells in a month grid (6 weeks of 7 days).
const GridSize = 42

// MaxVisibleEvents is how many events a cell shows before collapsing into an overflow count.
const MaxVisibleEvents = 2

// Domain errors
var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// Event is a dated annotation on the calendar.
type Event struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"` // YYYY-MM-DD
	Type  string `json:"type"`
}

// IsSession reports whether the event is an attendance session.
func (e Event) IsSession() bool {
	return e.Type == TypeSession
}

// Cell is one day in the month grid.
// Events is only populated for current-month cells.
type Cell struct {
	Day     int
	Month   time.Month
	Year    int
	Current bool
	Events  []Event
}

// Visible returns the events shown in the cell.
func (c Cell) Visible() []Event {
	if len(c.Events) <= MaxVisibleEvents {
		return c.Events
	}
	return c.Events[:MaxVisibleEvents]
}

// Overflow returns how many events are hidden behind "+N more".
func (c Cell) Overflow() int {
	if n := len(c.Events) - MaxVisibleEvents; n > 0 {
		return n
	}
	return 0
}

// IsToday reports whether the cell is the same calendar day as now.
// Only current-month cells can be today.
func (c Cell) IsToday(now time.Time) bool {
	if !c.Current {
		return false
	}
	y, m, d := now.Date()
	return c.Year == y && c.Month == m && c.Day == d
}

// DateKey formats a day as the event date key.
func DateKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildGrid lays out a month as exactly GridSize cells: the tail of the previous
// month, every day of the month, then the head of the next month.
// PRE: month is within 1..12
// POST: len(result) == GridSize; exactly DaysIn(year, month) cells are Current
// INVARIANT: an event appears in at most one cell, and only in the cell whose DateKey equals its Date
func BuildGrid(year int, month time.Month, events []Event) ([]Cell, error) {
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday())
	days := DaysIn(year, month)
	prev := first.AddDate(0, -1, 0)
	prevDays := DaysIn(prev.Year(), prev.Month())
	next := first.AddDate(0, 1, 0)

	byDate := make(map[string][]Event, len(events))
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	cells := make([]Cell, 0, GridSize)
	for i := lead - 1; i >= 0; i-- {
		cells = append(cells, Cell{Day: prevDays - i, Month: prev.Month(), Year: prev.Year()})
	}
	for d := 1; d <= days; d++ {
		cells = append(cells, Cell{
			Day:     d,
			Month:   month,
			Year:    year,
			Current: true,
			Events:  byDate[DateKey(year, month, d)],
		})
	}
	for d := 1; len(cells) < GridSize; d++ {
		cells = append(cells, Cell{Day: d, Month: next.Month(), Year: next.Year()})
	}
	return cells, nil
}

// Shift returns the year and month offset by delta months.
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}
