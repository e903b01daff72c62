package agenda

import (
	"errors"
	"time"
)

var (
	ErrInvalidDate   = errors.New("invalid calendar date")
	ErrNonWorkingDay = errors.New("day is a weekend or holiday")
	ErrSlotClosed    = errors.New("slot is administratively closed")
	ErrSlotFull      = errors.New("slot already holds the maximum number of appointments")
)

// matches applies the wildcard rule: a closure record covers (ora, tipo)
// when its own ora/tipo are either unset or equal. A whole-day record
// therefore covers every slot, a type-only record covers that type at
// every hour.
func (c ClosedSlot) matches(data, ora string, tipo CareType) bool {
	if c.Data != data {
		return false
	}
	if c.Ora != nil && *c.Ora != ora {
		return false
	}
	if c.Tipo != nil && *c.Tipo != tipo {
		return false
	}
	return true
}

// MatchingClosure returns the first record covering (data, ora, tipo), or
// nil. First-in-input-order keeps the result deterministic when several
// records overlap; repositories return closures in a stable order.
func MatchingClosure(data, ora string, tipo CareType, closures []ClosedSlot) *ClosedSlot {
	for i := range closures {
		if closures[i].matches(data, ora, tipo) {
			return &closures[i]
		}
	}
	return nil
}

func IsSlotClosed(data, ora string, tipo CareType, closures []ClosedSlot) bool {
	return MatchingClosure(data, ora, tipo, closures) != nil
}

// AppointmentsForSlot filters a day snapshot down to one slot. Under the
// capacity invariant the result holds at most SlotCapacity entries.
func AppointmentsForSlot(data, ora string, tipo CareType, appts []Appointment) []Appointment {
	var out []Appointment
	for _, a := range appts {
		if a.Data == data && a.Ora == ora && a.Tipo == tipo {
			out = append(out, a)
		}
	}
	return out
}

// CheckBookable decides whether a booking attempt for (data, ora, tipo)
// may proceed, given the day's snapshots. Rejections are reported in a
// fixed precedence: non-working day, then closure, then capacity.
func CheckBookable(data, ora string, tipo CareType, hs HolidaySet, closures []ClosedSlot, appts []Appointment) error {
	day, err := time.Parse(DateLayout, data)
	if err != nil {
		return ErrInvalidDate
	}
	if IsNonWorkingDay(day, hs) {
		return ErrNonWorkingDay
	}
	if IsSlotClosed(data, ora, tipo, closures) {
		return ErrSlotClosed
	}
	if len(AppointmentsForSlot(data, ora, tipo, appts)) >= SlotCapacity {
		return ErrSlotFull
	}
	return nil
}
