package agenda

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date wire format used everywhere in the API.
const DateLayout = "2006-01-02"

// HolidaySet holds clinic holidays keyed by their yyyy-MM-dd form.
type HolidaySet map[string]struct{}

func (hs HolidaySet) Contains(d time.Time) bool {
	_, ok := hs[d.Format(DateLayout)]
	return ok
}

// easterByYear maps years to Easter Sunday; Easter Monday is derived.
var easterByYear = map[int]string{
	2026: "2026-04-05",
	2027: "2027-03-28",
	2028: "2028-04-16",
	2029: "2029-04-01",
	2030: "2030-04-21",
}

// Holidays returns the clinic's closure dates for a year: Italian national
// holidays plus Santa Rosalia (Palermo) and, where tabled, Easter and
// Easter Monday.
func Holidays(year int) []string {
	days := []string{
		fmt.Sprintf("%d-01-01", year), // Capodanno
		fmt.Sprintf("%d-01-06", year), // Epifania
		fmt.Sprintf("%d-04-25", year), // Liberazione
		fmt.Sprintf("%d-05-01", year), // Festa del Lavoro
		fmt.Sprintf("%d-06-02", year), // Festa della Repubblica
		fmt.Sprintf("%d-07-15", year), // Santa Rosalia
		fmt.Sprintf("%d-08-15", year), // Ferragosto
		fmt.Sprintf("%d-11-01", year), // Ognissanti
		fmt.Sprintf("%d-12-08", year), // Immacolata
		fmt.Sprintf("%d-12-25", year), // Natale
		fmt.Sprintf("%d-12-26", year), // Santo Stefano
	}

	if easter, ok := easterByYear[year]; ok {
		days = append(days, easter)
		ed, err := time.Parse(DateLayout, easter)
		if err == nil {
			days = append(days, ed.AddDate(0, 0, 1).Format(DateLayout))
		}
	}

	return days
}

// HolidaySetFor builds a lookup set spanning one or more years, so that
// navigation across a year boundary stays correct.
func HolidaySetFor(years ...int) HolidaySet {
	hs := make(HolidaySet)
	for _, y := range years {
		for _, d := range Holidays(y) {
			hs[d] = struct{}{}
		}
	}
	return hs
}

// IsNonWorkingDay reports whether the clinic is shut on d: weekends and
// holidays. Closure records do not factor in here.
func IsNonWorkingDay(d time.Time, hs HolidaySet) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return true
	}
	return hs.Contains(d)
}

// NextWorkingDay returns the first working day on or after d. Identity on
// a working day.
func NextWorkingDay(d time.Time, hs HolidaySet) time.Time {
	for IsNonWorkingDay(d, hs) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// PrevWorkingDay returns the first working day on or before d.
func PrevWorkingDay(d time.Time, hs HolidaySet) time.Time {
	for IsNonWorkingDay(d, hs) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
