package tuition

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/primeswim/tuition/generic"
)

// =============================================================================
// TUITION AGGREGATOR
// =============================================================================

// Aggregate builds the calculation row for one participant from the
// exception-filtered days of the month, the participant's resolution and
// the resolved rate. One session bills one hour. A row that needs
// configuration bills nothing at a zero rate.
func Aggregate(p Participant, level *LevelConfig, days []generic.TimePoint, res Resolution, rate decimal.Decimal) CalculationRow {
	row := CalculationRow{
		ParticipantID:    p.ID,
		ParticipantName:  p.Name,
		Level:            p.Level,
		TrainingWeekdays: append([]int{}, res.Weekdays...),
		RatePerHour:      rate,
		Tuition:          decimal.Zero,
		ScheduleLines:    []string{},
		NeedsConfig:      level == nil || res.Empty(),
	}
	if row.NeedsConfig {
		row.RatePerHour = decimal.Zero
		return row
	}

	var sessions []session
	for _, day := range days {
		slot, ok := res.Slots[day.WeekdayIndex()]
		if !ok {
			continue
		}
		sessions = append(sessions, session{day: day, slot: slot})
		row.ScheduleLines = append(row.ScheduleLines, ScheduleLine(day, slot))
	}

	row.SessionCount = len(sessions)
	row.Tuition = generic.RoundCurrency(decimal.NewFromInt(int64(row.SessionCount)).Mul(rate))

	rep := representative(sessions, res)
	row.TimeSlot = rep.TimeSlot
	row.Location = rep.Location
	return row
}

type session struct {
	day  generic.TimePoint
	slot Slot
}

// ScheduleLine renders one session as plain text, e.g.
// "Monday March 3 — 7-8PM @ Pool A".
func ScheduleLine(day generic.TimePoint, slot Slot) string {
	return fmt.Sprintf("%s %s %d — %s @ %s", day.Weekday(), day.Month(), day.Day(), slot.TimeSlot, slot.Location)
}

// representative picks the slot used by the most sessions, the earliest one
// on a tie. With no sessions it falls back to the first resolved weekday.
func representative(sessions []session, res Resolution) Slot {
	if len(sessions) == 0 {
		if res.Empty() {
			return Slot{}
		}
		return res.Slots[res.Weekdays[0]]
	}

	counts := make(map[Slot]int)
	for _, s := range sessions {
		counts[s.slot]++
	}
	best := sessions[0].slot
	for _, s := range sessions {
		if counts[s.slot] > counts[best] {
			best = s.slot
		}
	}
	return best
}
