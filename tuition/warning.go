package tuition

import (
	"errors"
	"fmt"

	"github.com/primeswim/tuition/generic"
)

// WarningCode identifies a recoverable problem found during a calculation.
type WarningCode string

const (
	WarnMissingLevel          WarningCode = "missing_level"
	WarnInvalidLevelReference WarningCode = "invalid_level_reference"
	WarnMissingWeekdays       WarningCode = "missing_weekdays"
	WarnInvalidWeekday        WarningCode = "invalid_weekday"
	WarnMalformedException    WarningCode = "malformed_exception"
)

var warningSentinels = map[WarningCode]error{
	WarnMissingLevel:          generic.ErrMissingLevel,
	WarnInvalidLevelReference: generic.ErrInvalidLevelReference,
	WarnMissingWeekdays:       generic.ErrMissingWeekdays,
	WarnInvalidWeekday:        generic.ErrInvalidWeekday,
	WarnMalformedException:    generic.ErrMalformedException,
}

// Warning is reported alongside the rows. It never aborts a calculation.
// Warning satisfies error and unwraps to the matching generic sentinel.
type Warning struct {
	Code          WarningCode `json:"code"`
	ParticipantID string      `json:"participant_id,omitempty"`
	Date          string      `json:"date,omitempty"`
	Message       string      `json:"message"`
}

func (w Warning) Error() string {
	switch {
	case w.ParticipantID != "":
		return fmt.Sprintf("%s: participant %s: %s", w.Code, w.ParticipantID, w.Message)
	case w.Date != "":
		return fmt.Sprintf("%s: %s: %s", w.Code, w.Date, w.Message)
	default:
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
}

func (w Warning) Unwrap() error { return warningSentinels[w.Code] }

func participantWarning(code WarningCode, participantID, format string, args ...any) Warning {
	return Warning{Code: code, ParticipantID: participantID, Message: fmt.Sprintf(format, args...)}
}

// exceptionWarning converts an ExceptionDateError into a warning.
func exceptionWarning(err error) Warning {
	var de *generic.ExceptionDateError
	if errors.As(err, &de) {
		return Warning{Code: WarnMalformedException, Date: de.Date, Message: de.Reason}
	}
	return Warning{Code: WarnMalformedException, Message: err.Error()}
}
