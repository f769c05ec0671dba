// Package calendar holds the agenda's date rules: default working hours,
// day/week/month windows, window membership and view ordering.
package calendar

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"agendaapi/internal/model"
)

// Working hours applied to events that only carry a date.
const (
	DefaultStartHour = 8
	DefaultEndHour   = 17
)

// Schedule turns an event date (and optional last day) into start/end instants in loc.
func Schedule(day model.Date, last *model.Date, loc *time.Location) (time.Time, time.Time) {
	start := day.In(loc).Add(DefaultStartHour * time.Hour)
	endDay := day
	if last != nil {
		endDay = *last
	}
	end := endDay.In(loc).Add(DefaultEndHour * time.Hour)
	return start, end
}

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// DayWindow covers the calendar day of t in loc.
func DayWindow(t time.Time, loc *time.Location) Window {
	from := startOfDay(t, loc)
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

// WeekWindow covers Monday through Sunday of the week containing t.
func WeekWindow(t time.Time, loc *time.Location) Window {
	day := startOfDay(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	from := day.AddDate(0, 0, -offset)
	return Window{From: from, To: from.AddDate(0, 0, 7)}
}

// MonthWindow covers the calendar month containing t.
func MonthWindow(t time.Time, loc *time.Location) Window {
	t = t.In(loc)
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return Window{From: from, To: from.AddDate(0, 1, 0)}
}

// Contains reports whether e belongs to the window. Scheduled events match when
// [start, end] overlaps it; unscheduled ones match on their submission date.
func (w Window) Contains(e model.AgendaEvent) bool {
	if e.StartTime == nil {
		if e.SubmissionDate == nil {
			return false
		}
		return !e.SubmissionDate.Before(w.From) && e.SubmissionDate.Before(w.To)
	}
	end := *e.StartTime
	if e.EndTime != nil && e.EndTime.After(end) {
		end = *e.EndTime
	}
	return e.StartTime.Before(w.To) && !end.Before(w.From)
}

// Select returns the events that belong to w, in view order.
func Select(events []model.AgendaEvent, w Window) []model.AgendaEvent {
	out := make([]model.AgendaEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e) {
			out = append(out, e)
		}
	}
	SortForView(out)
	return out
}

// SortForView orders by start ascending with unscheduled events last.
func SortForView(events []model.AgendaEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].StartTime, events[j].StartTime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// NormalizeSEI keeps only the digits of a SEI process number.
func NormalizeSEI(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// InferType guesses the action type from an event title.
func InferType(title string) string {
	t := strings.ToLower(title)
	jps, jpe := strings.Contains(t, "jps"), strings.Contains(t, "jpe")
	switch {
	case jps && jpe:
		return model.TypeJPSAndJPE
	case jps:
		return model.TypeJPS
	case jpe:
		return model.TypeJPE
	case strings.Contains(t, "reunião"):
		return model.TypeMeeting
	case strings.Contains(t, "governo"):
		return model.TypeGovernment
	}
	return model.TypeOther
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
