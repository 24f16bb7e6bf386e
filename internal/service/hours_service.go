package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aquaponto/aquaponto/internal/constants"
	"github.com/aquaponto/aquaponto/internal/models"
)

// HoursService evaluates distributor opening hours and scheduling slots
type HoursService struct{}

// NewHoursService creates the hours service
func NewHoursService() *HoursService {
	return &HoursService{}
}

// TimeSlot one scheduling window within a day
type TimeSlot struct {
	Start string `json:"start"` // "HH:MM"
	End   string `json:"end"`   // "HH:MM"
}

// Label renders the slot in the "HH:MM-HH:MM" order form
func (s TimeSlot) Label() string {
	return s.Start + "-" + s.End
}

// defaultWeek fallback schedule when a distributor configured no hours:
// Mon-Fri 08:00-18:00, Sat 08:00-12:00, Sun closed.
func defaultWeek() []models.BusinessHour {
	week := make([]models.BusinessHour, 0, 7)
	for weekday := constants.WeekdayMin; weekday <= constants.WeekdayMax; weekday++ {
		hour := models.BusinessHour{Weekday: weekday}
		switch weekday {
		case 0:
			// Sunday closed
		case 6:
			hour.IsOpen = true
			hour.OpensAt = "08:00"
			hour.ClosesAt = "12:00"
		default:
			hour.IsOpen = true
			hour.OpensAt = "08:00"
			hour.ClosesAt = "18:00"
		}
		week = append(week, hour)
	}
	return week
}

// resolveWeek indexes hours by weekday, falling back to the default week
func resolveWeek(hours []models.BusinessHour) map[int]models.BusinessHour {
	if len(hours) == 0 {
		hours = defaultWeek()
	}
	week := make(map[int]models.BusinessHour, 7)
	for _, hour := range hours {
		week[hour.Weekday] = hour
	}
	return week
}

// IsOpenAt reports whether the distributor is open at the given instant
func (s *HoursService) IsOpenAt(hours []models.BusinessHour, t time.Time) bool {
	week := resolveWeek(hours)
	day, ok := week[int(t.Weekday())]
	if !ok || !day.IsOpen {
		return false
	}
	opens, err := parseClock(day.OpensAt)
	if err != nil {
		return false
	}
	closes, err := parseClock(day.ClosesAt)
	if err != nil {
		return false
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= opens && minute < closes
}

// AvailableSlots returns the hourly scheduling slots of a date.
// The last partial hour is dropped; a closed day yields no slots.
func (s *HoursService) AvailableSlots(hours []models.BusinessHour, date time.Time) []TimeSlot {
	week := resolveWeek(hours)
	day, ok := week[int(date.Weekday())]
	if !ok || !day.IsOpen {
		return []TimeSlot{}
	}
	opens, err := parseClock(day.OpensAt)
	if err != nil {
		return []TimeSlot{}
	}
	closes, err := parseClock(day.ClosesAt)
	if err != nil {
		return []TimeSlot{}
	}
	slots := []TimeSlot{}
	for start := opens; start+60 <= closes; start += 60 {
		slots = append(slots, TimeSlot{
			Start: formatClock(start),
			End:   formatClock(start + 60),
		})
	}
	return slots
}

// HasAnyFutureSlot reports whether any open weekday exists at all —
// a distributor closed right now but with open days can take scheduled orders.
func (s *HoursService) HasAnyFutureSlot(hours []models.BusinessHour) bool {
	week := resolveWeek(hours)
	for _, day := range week {
		if !day.IsOpen {
			continue
		}
		opens, err := parseClock(day.OpensAt)
		if err != nil {
			continue
		}
		closes, err := parseClock(day.ClosesAt)
		if err != nil {
			continue
		}
		if opens+60 <= closes {
			return true
		}
	}
	return false
}

// NextOpening returns the next instant the distributor opens at or after t.
// Returns nil when no weekday is open.
func (s *HoursService) NextOpening(hours []models.BusinessHour, t time.Time) *time.Time {
	week := resolveWeek(hours)
	for offset := 0; offset < 8; offset++ {
		day := t.AddDate(0, 0, offset)
		entry, ok := week[int(day.Weekday())]
		if !ok || !entry.IsOpen {
			continue
		}
		opens, err := parseClock(entry.OpensAt)
		if err != nil {
			continue
		}
		opening := time.Date(day.Year(), day.Month(), day.Day(), opens/60, opens%60, 0, 0, t.Location())
		if opening.After(t) {
			return &opening
		}
		// today already open or past opening; only a later day counts
		if offset > 0 {
			return &opening
		}
	}
	return nil
}

// ValidateWeek checks a full weekly schedule submitted by the dashboard:
// exactly one row per weekday 0-6, open days with a valid span.
func (s *HoursService) ValidateWeek(hours []models.BusinessHour) error {
	if len(hours) != 7 {
		return ErrIncompleteWeek
	}
	sorted := make([]models.BusinessHour, len(hours))
	copy(sorted, hours)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Weekday < sorted[j].Weekday })
	for i, hour := range sorted {
		if hour.Weekday != constants.WeekdayMin+i {
			return ErrInvalidWeekday
		}
		if !hour.IsOpen {
			continue
		}
		opens, err := parseClock(hour.OpensAt)
		if err != nil {
			return err
		}
		closes, err := parseClock(hour.ClosesAt)
		if err != nil {
			return err
		}
		if opens >= closes {
			return ErrInvalidTimeSpan
		}
	}
	return nil
}

// parseClock parses "HH:MM" into minutes since midnight
func parseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, ErrInvalidTimeSpan
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, ErrInvalidTimeSpan
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, ErrInvalidTimeSpan
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
