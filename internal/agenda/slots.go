package agenda

// TimeSlots is the fixed booking grid: half-hour marks over a morning and
// an afternoon block, in chronological order.
var TimeSlots = []string{
	"08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
	"15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
}

const morningSlotCount = 9

func MorningSlots() []string {
	return TimeSlots[:morningSlotCount]
}

func AfternoonSlots() []string {
	return TimeSlots[morningSlotCount:]
}

func IsValidSlot(ora string) bool {
	for _, s := range TimeSlots {
		if s == ora {
			return true
		}
	}
	return false
}
