package api

import (
	"github.com/go-playground/validator/v10"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("calendar_date", validateCalendarDate)
	_ = validate.RegisterValidation("time_slot", validateTimeSlot)
}

func validateStruct(s any) error {
	return validate.Struct(s)
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := parseDate(fl.Field().String())
	return err == nil
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return agenda.IsValidSlot(fl.Field().String())
}
