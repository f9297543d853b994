// Package export renders calculation results as CSV and XLSX.
//
// Both formats share one column layout. Schedule lines go into a single
// cell separated by newlines, training weekdays are written as names.
package export

import (
	"strconv"
	"strings"

	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/tuition"
)

// Header is the column layout shared by every format.
var Header = []string{
	"Participant ID",
	"Name",
	"Level",
	"Training Days",
	"Sessions",
	"Rate / Hour",
	"Tuition",
	"Time Slot",
	"Location",
	"Schedule",
	"Needs Config",
}

// record flattens a row into display strings, money with two decimals.
func record(row tuition.CalculationRow) []string {
	return []string{
		row.ParticipantID,
		row.ParticipantName,
		row.Level,
		weekdayNames(row.TrainingWeekdays),
		strconv.Itoa(row.SessionCount),
		row.RatePerHour.StringFixed(generic.CurrencyPlaces),
		row.Tuition.StringFixed(generic.CurrencyPlaces),
		row.TimeSlot,
		row.Location,
		strings.Join(row.ScheduleLines, "\n"),
		strconv.FormatBool(row.NeedsConfig),
	}
}

func weekdayNames(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, generic.WeekdayName(d))
	}
	return strings.Join(names, ", ")
}

// FileName suggests a download name for a month's export.
func FileName(month, ext string) string {
	return "tuition_" + month + "." + ext
}
