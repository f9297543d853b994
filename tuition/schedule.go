package tuition

import (
	"sort"

	"github.com/primeswim/tuition/generic"
)

// =============================================================================
// SCHEDULE RESOLVER
// =============================================================================
//
// Each field of a slot is resolved on its own, highest precedence first:
//
//   1. participant override (TrainingTimeSlot / TrainingLocation)
//   2. the level's schedule entry for that weekday
//   3. the level's default
//
// A participant that overrides only the location still gets the level's
// per-weekday time slot.

// fieldSource yields a value for a weekday, or false when it has nothing to say.
type fieldSource func(weekday int) (string, bool)

// firstDefined walks the chain and returns the first defined value.
func firstDefined(weekday int, chain ...fieldSource) string {
	for _, src := range chain {
		if v, ok := src(weekday); ok {
			return v
		}
	}
	return ""
}

func constant(v string) fieldSource {
	return func(int) (string, bool) { return v, v != "" }
}

func levelEntry(level *LevelConfig, field func(Slot) string) fieldSource {
	return func(weekday int) (string, bool) {
		slot, ok := level.ScheduleFor(weekday)
		if !ok {
			return "", false
		}
		v := field(slot)
		return v, v != ""
	}
}

func slotTime(s Slot) string     { return s.TimeSlot }
func slotLocation(s Slot) string { return s.Location }

// Resolution is the effective weekday pattern for one participant.
type Resolution struct {
	// Weekdays is the deduplicated, ascending set of valid weekday indices.
	Weekdays []int
	Slots    map[int]Slot

	// Dropped holds indices outside 0..6 that were ignored.
	Dropped []int
}

// WeekdayCount is the structural weekly frequency used by the rate policy.
// It is not the number of sessions in a month.
func (r Resolution) WeekdayCount() int { return len(r.Weekdays) }

func (r Resolution) Empty() bool { return len(r.Weekdays) == 0 }

// ResolveSchedule maps each of the swimmer's training weekdays to a slot.
// A nil level resolves to nothing.
func ResolveSchedule(level *LevelConfig, swimmer SwimmerConfig) Resolution {
	res := Resolution{Slots: map[int]Slot{}}
	if level == nil {
		return res
	}

	weekdays, dropped := normalizeWeekdays(swimmer.TrainingWeekdays)
	res.Weekdays = weekdays
	res.Dropped = dropped

	timeChain := []fieldSource{
		constant(swimmer.TrainingTimeSlot),
		levelEntry(level, slotTime),
		constant(level.DefaultTimeSlot),
	}
	locationChain := []fieldSource{
		constant(swimmer.TrainingLocation),
		levelEntry(level, slotLocation),
		constant(level.DefaultLocation),
	}

	for _, d := range weekdays {
		res.Slots[d] = Slot{
			TimeSlot: firstDefined(d, timeChain...),
			Location: firstDefined(d, locationChain...),
		}
	}
	return res
}

// normalizeWeekdays deduplicates and sorts, separating out-of-range indices.
func normalizeWeekdays(in []int) (valid, dropped []int) {
	seen := make(map[int]bool, len(in))
	for _, d := range in {
		if !generic.ValidWeekday(d) {
			dropped = append(dropped, d)
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		valid = append(valid, d)
	}
	sort.Ints(valid)
	return valid, dropped
}
