package agenda

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func carePtr(c CareType) *CareType { return &c }

func statusPtr(s AppointmentStatus) *AppointmentStatus { return &s }

func appt(data, ora string, tipo CareType) Appointment {
	return Appointment{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		Ambulatorio: SitePTACentro,
		Data:        data,
		Ora:         ora,
		Tipo:        tipo,
		Stato:       StatusToDo,
	}
}

func TestClosureMatching(t *testing.T) {
	const day = "2026-09-02"

	tests := []struct {
		name    string
		closure ClosedSlot
		ora     string
		tipo    CareType
		want    bool
	}{
		{"exact slot and type", ClosedSlot{Data: day, Ora: strPtr("09:00"), Tipo: carePtr(CarePICC)}, "09:00", CarePICC, true},
		{"exact slot, other type", ClosedSlot{Data: day, Ora: strPtr("09:00"), Tipo: carePtr(CarePICC)}, "09:00", CareMED, false},
		{"exact slot, other hour", ClosedSlot{Data: day, Ora: strPtr("09:00"), Tipo: carePtr(CarePICC)}, "09:30", CarePICC, false},
		{"hour closed for both types", ClosedSlot{Data: day, Ora: strPtr("10:00")}, "10:00", CareMED, true},
		{"type closed all day", ClosedSlot{Data: day, Tipo: carePtr(CareMED)}, "16:30", CareMED, true},
		{"type closed all day, other type", ClosedSlot{Data: day, Tipo: carePtr(CareMED)}, "16:30", CarePICC, false},
		{"whole day closed", ClosedSlot{Data: day}, "11:30", CarePICC, true},
		{"whole day closed, afternoon", ClosedSlot{Data: day}, "17:00", CareMED, true},
		{"different day", ClosedSlot{Data: "2026-09-03"}, "09:00", CarePICC, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsSlotClosed(day, tt.ora, tt.tipo, []ClosedSlot{tt.closure})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchingClosureFirstInOrder(t *testing.T) {
	const day = "2026-09-02"
	first := ClosedSlot{ID: uuid.New(), Data: day, Ora: strPtr("09:00")}
	second := ClosedSlot{ID: uuid.New(), Data: day} // whole day, also matches

	got := MatchingClosure(day, "09:00", CarePICC, []ClosedSlot{first, second})
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
}

func TestClosureRoundTrip(t *testing.T) {
	const day = "2026-09-02"
	slot9 := ClosedSlot{ID: uuid.New(), Data: day, Ora: strPtr("09:00"), Tipo: carePtr(CarePICC)}
	slot10 := ClosedSlot{ID: uuid.New(), Data: day, Ora: strPtr("10:00"), Tipo: carePtr(CarePICC)}

	closures := []ClosedSlot{slot9, slot10}
	require.True(t, IsSlotClosed(day, "09:00", CarePICC, closures))
	require.True(t, IsSlotClosed(day, "10:00", CarePICC, closures))

	// Reopening 09:00 removes only that record.
	remaining := []ClosedSlot{slot10}
	assert.False(t, IsSlotClosed(day, "09:00", CarePICC, remaining))
	assert.True(t, IsSlotClosed(day, "10:00", CarePICC, remaining))
}

func TestAppointmentsForSlot(t *testing.T) {
	const day = "2026-09-02"
	appts := []Appointment{
		appt(day, "09:00", CarePICC),
		appt(day, "09:00", CarePICC),
		appt(day, "09:00", CareMED),
		appt(day, "09:30", CarePICC),
		appt("2026-09-03", "09:00", CarePICC),
	}

	assert.Len(t, AppointmentsForSlot(day, "09:00", CarePICC, appts), 2)
	assert.Len(t, AppointmentsForSlot(day, "09:00", CareMED, appts), 1)
	assert.Empty(t, AppointmentsForSlot(day, "10:00", CarePICC, appts))
}

func TestCheckBookable(t *testing.T) {
	hs := HolidaySetFor(2025, 2026)

	t.Run("free slot on a working day", func(t *testing.T) {
		// 2025-01-15 is a Wednesday.
		err := CheckBookable("2025-01-15", "09:00", CarePICC, hs, nil, nil)
		assert.NoError(t, err)
	})

	t.Run("malformed date", func(t *testing.T) {
		err := CheckBookable("15/01/2025", "09:00", CarePICC, hs, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("saturday", func(t *testing.T) {
		err := CheckBookable("2025-01-18", "09:00", CarePICC, hs, nil, nil)
		assert.ErrorIs(t, err, ErrNonWorkingDay)
	})

	t.Run("holiday", func(t *testing.T) {
		err := CheckBookable("2026-07-15", "09:00", CarePICC, hs, nil, nil)
		assert.ErrorIs(t, err, ErrNonWorkingDay)
	})

	t.Run("closed slot", func(t *testing.T) {
		closures := []ClosedSlot{{Data: "2025-01-15", Ora: strPtr("09:00")}}
		err := CheckBookable("2025-01-15", "09:00", CarePICC, hs, closures, nil)
		assert.ErrorIs(t, err, ErrSlotClosed)
	})

	t.Run("full slot", func(t *testing.T) {
		appts := []Appointment{
			appt("2025-01-15", "09:00", CarePICC),
			appt("2025-01-15", "09:00", CarePICC),
		}
		err := CheckBookable("2025-01-15", "09:00", CarePICC, hs, nil, appts)
		assert.ErrorIs(t, err, ErrSlotFull)
	})

	t.Run("one appointment leaves room", func(t *testing.T) {
		appts := []Appointment{appt("2025-01-15", "09:00", CarePICC)}
		err := CheckBookable("2025-01-15", "09:00", CarePICC, hs, nil, appts)
		assert.NoError(t, err)
	})

	t.Run("capacity is per care type", func(t *testing.T) {
		appts := []Appointment{
			appt("2025-01-15", "09:00", CarePICC),
			appt("2025-01-15", "09:00", CarePICC),
		}
		err := CheckBookable("2025-01-15", "09:00", CareMED, hs, nil, appts)
		assert.NoError(t, err)
	})

	t.Run("non-working day wins over closure and capacity", func(t *testing.T) {
		closures := []ClosedSlot{{Data: "2025-01-18"}}
		appts := []Appointment{
			appt("2025-01-18", "09:00", CarePICC),
			appt("2025-01-18", "09:00", CarePICC),
		}
		err := CheckBookable("2025-01-18", "09:00", CarePICC, hs, closures, appts)
		assert.ErrorIs(t, err, ErrNonWorkingDay)
	})

	t.Run("closure wins over capacity", func(t *testing.T) {
		closures := []ClosedSlot{{Data: "2025-01-15", Ora: strPtr("09:00")}}
		appts := []Appointment{
			appt("2025-01-15", "09:00", CarePICC),
			appt("2025-01-15", "09:00", CarePICC),
		}
		err := CheckBookable("2025-01-15", "09:00", CarePICC, hs, closures, appts)
		assert.ErrorIs(t, err, ErrSlotClosed)
	})
}
