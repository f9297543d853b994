package factory

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/primeswim/tuition/generic"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	// custom validation tags
	notBlankTag   = "notblank"
	minLEDaysTag  = "min_le_days"
	uniqueDaysTag = "unique_weekdays"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	validate.RegisterStructValidation(levelStructValidation, LevelJSON{})
	validate.RegisterStructValidation(participantStructValidation, ParticipantJSON{})

	registerCustomTranslations(notBlankTag, minLEDaysTag, uniqueDaysTag)
}

// registerCustomTranslations registers messages for the custom tags. The
// registration func is a noop because the default translations are already
// registered.
func registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case minLEDaysTag:
		return "min_days_per_week cannot exceed days_per_week"
	case uniqueDaysTag:
		return "training weekdays must be unique"
	default:
		return ""
	}
}

// Custom Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func levelStructValidation(sl validator.StructLevel) {
	if lj, ok := sl.Current().Interface().(LevelJSON); ok {
		if lj.MinDaysPerWeek > lj.DaysPerWeek {
			sl.ReportError(lj.MinDaysPerWeek, "min_days_per_week", "MinDaysPerWeek", minLEDaysTag, "")
		}
	}
}

func participantStructValidation(sl validator.StructLevel) {
	if pj, ok := sl.Current().Interface().(ParticipantJSON); ok {
		seen := make(map[int]bool, len(pj.TrainingWeekdays))
		for _, d := range pj.TrainingWeekdays {
			if seen[d] {
				sl.ReportError(pj.TrainingWeekdays, "training_weekdays", "TrainingWeekdays", uniqueDaysTag, "")
				return
			}
			seen[d] = true
		}
	}
}

// ValidationError collects translated field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return generic.ErrInvalidInput }

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the leading struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
