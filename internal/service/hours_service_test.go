package service

import (
	"errors"
	"testing"
	"time"

	"github.com/aquaponto/aquaponto/internal/models"
)

func weekdayDate(t *testing.T, weekday time.Weekday) time.Time {
	t.Helper()
	date := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // a Monday
	for date.Weekday() != weekday {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

func openWeek(opensAt, closesAt string) []models.BusinessHour {
	week := make([]models.BusinessHour, 0, 7)
	for weekday := 0; weekday <= 6; weekday++ {
		week = append(week, models.BusinessHour{
			Weekday:  weekday,
			IsOpen:   true,
			OpensAt:  opensAt,
			ClosesAt: closesAt,
		})
	}
	return week
}

func TestIsOpenAt(t *testing.T) {
	s := NewHoursService()
	hours := []models.BusinessHour{
		{Weekday: 1, IsOpen: true, OpensAt: "08:00", ClosesAt: "18:00"},
	}
	monday := weekdayDate(t, time.Monday)

	if !s.IsOpenAt(hours, monday) { // 10:00
		t.Fatal("want open at 10:00 monday")
	}
	beforeOpen := time.Date(monday.Year(), monday.Month(), monday.Day(), 7, 59, 0, 0, time.UTC)
	if s.IsOpenAt(hours, beforeOpen) {
		t.Fatal("want closed before opening")
	}
	atClose := time.Date(monday.Year(), monday.Month(), monday.Day(), 18, 0, 0, 0, time.UTC)
	if s.IsOpenAt(hours, atClose) {
		t.Fatal("closing minute is exclusive")
	}
	tuesday := weekdayDate(t, time.Tuesday)
	if s.IsOpenAt(hours, tuesday) {
		t.Fatal("weekday without a row is closed")
	}
}

func TestIsOpenAtFallsBackToDefaultWeek(t *testing.T) {
	s := NewHoursService()
	monday := weekdayDate(t, time.Monday) // 10:00, default Mon-Fri 08:00-18:00
	if !s.IsOpenAt(nil, monday) {
		t.Fatal("default week should be open monday morning")
	}
	sunday := weekdayDate(t, time.Sunday)
	if s.IsOpenAt(nil, sunday) {
		t.Fatal("default week is closed on sunday")
	}
}

func TestAvailableSlotsHourlyWindows(t *testing.T) {
	s := NewHoursService()
	hours := []models.BusinessHour{
		{Weekday: 6, IsOpen: true, OpensAt: "08:00", ClosesAt: "12:00"},
	}
	saturday := weekdayDate(t, time.Saturday)
	slots := s.AvailableSlots(hours, saturday)
	want := []string{"08:00-09:00", "09:00-10:00", "10:00-11:00", "11:00-12:00"}
	if len(slots) != len(want) {
		t.Fatalf("slot count want %d got %d", len(want), len(slots))
	}
	for i, label := range want {
		if slots[i].Label() != label {
			t.Fatalf("slot %d want %s got %s", i, label, slots[i].Label())
		}
	}
}

func TestAvailableSlotsDropsPartialHour(t *testing.T) {
	s := NewHoursService()
	hours := []models.BusinessHour{
		{Weekday: 1, IsOpen: true, OpensAt: "08:00", ClosesAt: "12:30"},
	}
	slots := s.AvailableSlots(hours, weekdayDate(t, time.Monday))
	if len(slots) != 4 {
		t.Fatalf("partial last hour must be dropped, want 4 slots got %d", len(slots))
	}
	if last := slots[len(slots)-1].Label(); last != "11:00-12:00" {
		t.Fatalf("last slot want 11:00-12:00 got %s", last)
	}
}

func TestAvailableSlotsClosedDayEmpty(t *testing.T) {
	s := NewHoursService()
	hours := []models.BusinessHour{
		{Weekday: 0, IsOpen: false},
	}
	slots := s.AvailableSlots(hours, weekdayDate(t, time.Sunday))
	if len(slots) != 0 {
		t.Fatalf("closed day want 0 slots got %d", len(slots))
	}
}

func TestAvailableSlotsNearMidnightSpan(t *testing.T) {
	s := NewHoursService()
	slots := s.AvailableSlots(openWeek("00:00", "23:59"), weekdayDate(t, time.Wednesday))
	if len(slots) != 23 {
		t.Fatalf("00:00-23:59 span want 23 hourly slots got %d", len(slots))
	}
	if first := slots[0].Label(); first != "00:00-01:00" {
		t.Fatalf("first slot want 00:00-01:00 got %s", first)
	}
	if last := slots[len(slots)-1].Label(); last != "22:00-23:00" {
		t.Fatalf("last slot want 22:00-23:00 got %s", last)
	}
}

func TestHasAnyFutureSlot(t *testing.T) {
	s := NewHoursService()
	if !s.HasAnyFutureSlot([]models.BusinessHour{
		{Weekday: 1, IsOpen: true, OpensAt: "08:00", ClosesAt: "09:00"},
	}) {
		t.Fatal("one-hour window is schedulable")
	}
	if s.HasAnyFutureSlot([]models.BusinessHour{
		{Weekday: 1, IsOpen: true, OpensAt: "08:00", ClosesAt: "08:30"},
		{Weekday: 2, IsOpen: false},
	}) {
		t.Fatal("sub-hour window cannot host a slot")
	}
}

func TestNextOpening(t *testing.T) {
	s := NewHoursService()
	hours := []models.BusinessHour{
		{Weekday: 1, IsOpen: true, OpensAt: "08:00", ClosesAt: "18:00"},
	}
	// Saturday 10:00, next opening is Monday 08:00
	saturday := weekdayDate(t, time.Saturday)
	next := s.NextOpening(hours, saturday)
	if next == nil {
		t.Fatal("want a next opening")
	}
	if next.Weekday() != time.Monday || next.Hour() != 8 {
		t.Fatalf("want monday 08:00 got %s", next)
	}

	closed := []models.BusinessHour{{Weekday: 0, IsOpen: false}}
	if s.NextOpening(closed, saturday) != nil {
		t.Fatal("never-open schedule has no next opening")
	}
}

func TestValidateWeek(t *testing.T) {
	s := NewHoursService()

	if err := s.ValidateWeek(openWeek("08:00", "18:00")); err != nil {
		t.Fatalf("valid week rejected: %v", err)
	}

	if err := s.ValidateWeek(openWeek("08:00", "18:00")[:6]); !errors.Is(err, ErrIncompleteWeek) {
		t.Fatalf("want ErrIncompleteWeek got %v", err)
	}

	duplicated := openWeek("08:00", "18:00")
	duplicated[6].Weekday = 5
	if err := s.ValidateWeek(duplicated); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("want ErrInvalidWeekday got %v", err)
	}

	inverted := openWeek("08:00", "18:00")
	inverted[2].OpensAt = "18:00"
	inverted[2].ClosesAt = "08:00"
	if err := s.ValidateWeek(inverted); !errors.Is(err, ErrInvalidTimeSpan) {
		t.Fatalf("want ErrInvalidTimeSpan got %v", err)
	}

	garbled := openWeek("08:00", "18:00")
	garbled[3].OpensAt = "8h00"
	if err := s.ValidateWeek(garbled); !errors.Is(err, ErrInvalidTimeSpan) {
		t.Fatalf("want ErrInvalidTimeSpan got %v", err)
	}

	// closed days skip the span check entirely
	closedWeek := openWeek("", "")
	for i := range closedWeek {
		closedWeek[i].IsOpen = false
	}
	if err := s.ValidateWeek(closedWeek); err != nil {
		t.Fatalf("all-closed week rejected: %v", err)
	}
}
