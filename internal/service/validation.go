package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wristcare/alertband-backend/pkg/model"
)

// ValidationError reports a rejected field. Handlers map it to a 400 with the
// field name in the error details so the form can highlight the right input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// wireSafe reports whether a value can be embedded in a comma-delimited
// payload line. The firmware format has no escaping, so a comma or line
// break inside a field would shift field boundaries on the device.
func wireSafe(s string) bool {
	return !strings.ContainsAny(s, ",\r\n")
}

// ValidateConfiguration checks every data-model invariant before encoding
// and normalizes each alert's day selection (duplicates removed, ascending
// order) so the serialized output is deterministic across save and reload.
func ValidateConfiguration(cfg *model.DeviceConfiguration) error {
	if cfg.Contact.Name == "" {
		return invalid("name", "contact name is required")
	}
	if !wireSafe(cfg.Contact.Name) {
		return invalid("name", "contact name must not contain commas or line breaks")
	}
	if cfg.Contact.Phone == "" {
		return invalid("phone", "contact phone is required")
	}
	if !wireSafe(cfg.Contact.Phone) {
		return invalid("phone", "contact phone must not contain commas or line breaks")
	}
	if cfg.Contact.Email == "" {
		return invalid("email", "contact email is required")
	}
	if !wireSafe(cfg.Contact.Email) {
		return invalid("email", "contact email must not contain commas or line breaks")
	}

	if cfg.MedicalInfo == "" {
		return invalid("medicalInfo", "medical info is required")
	}

	if cfg.DeviceID < model.DeviceIDMin || cfg.DeviceID > model.DeviceIDMax {
		return invalid("deviceId", "device id must be between %d and %d", model.DeviceIDMin, model.DeviceIDMax)
	}

	if len(cfg.Alerts) == 0 {
		return invalid("alerts", "at least one alert is required")
	}

	for i := range cfg.Alerts {
		if err := validateAlert(&cfg.Alerts[i], i); err != nil {
			return err
		}
	}

	return nil
}

func validateAlert(alert *model.AlertDefinition, index int) error {
	field := func(name string) string { return fmt.Sprintf("alerts[%d].%s", index, name) }

	if alert.Message == "" {
		return invalid(field("message"), "alert message is required")
	}
	if !wireSafe(alert.Message) {
		return invalid(field("message"), "alert message must not contain commas or line breaks")
	}
	if !alert.Category.Valid() {
		return invalid(field("type"), "alert type must be %q or %q", model.CategoryReminder, model.CategoryMedicine)
	}
	if alert.Hour < 0 || alert.Hour > 23 {
		return invalid(field("hour"), "hour must be between 0 and 23")
	}
	if alert.Minute < 0 || alert.Minute > 59 {
		return invalid(field("minute"), "minute must be between 0 and 59")
	}

	if alert.Everyday {
		// Day selection is ignored for everyday alerts.
		alert.Days = nil
		return nil
	}

	for _, day := range alert.Days {
		if !day.Valid() {
			return invalid(field("selectedDays"), "invalid weekday code %d", day)
		}
	}

	alert.Days = normalizeDays(alert.Days)
	if len(alert.Days) == 0 {
		return invalid(field("selectedDays"), "at least one day must be selected")
	}

	return nil
}

// normalizeDays deduplicates and sorts weekday codes ascending. The firmware
// does not care about record order, but a stable order keeps the payload
// byte-identical across save and reload regardless of click order in the form.
func normalizeDays(days []model.Weekday) []model.Weekday {
	seen := make(map[model.Weekday]bool, len(days))
	normalized := make([]model.Weekday, 0, len(days))
	for _, day := range days {
		if !seen[day] {
			seen[day] = true
			normalized = append(normalized, day)
		}
	}

	sort.Slice(normalized, func(i, j int) bool { return normalized[i] < normalized[j] })
	return normalized
}
