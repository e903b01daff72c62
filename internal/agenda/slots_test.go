package agenda

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotGrid(t *testing.T) {
	assert.Len(t, TimeSlots, 15)
	assert.Len(t, MorningSlots(), 9)
	assert.Len(t, AfternoonSlots(), 6)

	assert.Equal(t, "08:30", TimeSlots[0])
	assert.Equal(t, "12:30", MorningSlots()[len(MorningSlots())-1])
	assert.Equal(t, "15:00", AfternoonSlots()[0])
	assert.Equal(t, "17:30", TimeSlots[len(TimeSlots)-1])
}

func TestIsValidSlot(t *testing.T) {
	for _, s := range TimeSlots {
		assert.True(t, IsValidSlot(s), s)
	}

	assert.False(t, IsValidSlot("08:00"))
	assert.False(t, IsValidSlot("13:00"))
	assert.False(t, IsValidSlot("14:30"))
	assert.False(t, IsValidSlot("18:00"))
	assert.False(t, IsValidSlot("9:00"))
	assert.False(t, IsValidSlot(""))
}
