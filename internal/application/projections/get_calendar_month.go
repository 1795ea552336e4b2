package projections

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	domainCalendar "rohis/internal/domain/calendar"
)

// GetCalendarMonthQuery carries query parameters.
type GetCalendarMonthQuery struct {
	Year  int
	Month time.Month
}

// MonthRef names a month for navigation links.
type MonthRef struct {
	Year  int
	Month time.Month
}

// GetCalendarMonthResult carries the query result.
type GetCalendarMonthResult struct {
	Year  int
	Month time.Month
	Cells []domainCalendar.Cell
	Hijri string
	Prev  MonthRef
	Next  MonthRef
}

// GetCalendarMonthDeps holds dependencies for GetCalendarMonth.
type GetCalendarMonthDeps struct {
	CalendarStore CalendarStore
}

// QueryGetCalendarMonth loads the month's events and today's Hijri date in parallel and lays out the grid.
// PRE: query.Month is within 1..12
// POST: on a failed load the grid is still returned, without events or Hijri date, together with the error
func QueryGetCalendarMonth(ctx context.Context, query GetCalendarMonthQuery, deps GetCalendarMonthDeps) (GetCalendarMonthResult, error) {
	empty, err := domainCalendar.BuildGrid(query.Year, query.Month, nil)
	if err != nil {
		return GetCalendarMonthResult{}, err
	}
	py, pm := domainCalendar.Shift(query.Year, query.Month, -1)
	ny, nm := domainCalendar.Shift(query.Year, query.Month, 1)
	result := GetCalendarMonthResult{
		Year:  query.Year,
		Month: query.Month,
		Cells: empty,
		Prev:  MonthRef{Year: py, Month: pm},
		Next:  MonthRef{Year: ny, Month: nm},
	}

	var (
		events []domainCalendar.Event
		hijri  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = deps.CalendarStore.Events(gctx, query.Year, query.Month)
		return err
	})
	g.Go(func() error {
		var err error
		hijri, err = deps.CalendarStore.Hijri(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	cells, err := domainCalendar.BuildGrid(query.Year, query.Month, events)
	if err != nil {
		return result, err
	}
	result.Cells = cells
	result.Hijri = hijri
	return result, nil
}
