// Package payload implements the line-oriented text format the wearable
// firmware consumes:
//
//	<N>
//	<code>,<day>,<HH>,<MM>,<message>   (N times)
//	<name>,<phone>,<email>
//	<medical info, may span lines>
//	<device id>
//
// Lines are joined with a single newline and the payload carries no trailing
// terminator. Record fields are comma-joined and unescaped; the firmware
// cannot represent a comma or newline inside a record field, so callers must
// reject such input before encoding.
package payload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wristcare/alertband-backend/pkg/model"
)

// Record is a single expanded alert: one (category, day, time, message)
// tuple produced by resolving an alert definition's day selection.
type Record struct {
	Code    string
	Day     model.Weekday
	Hour    int
	Minute  int
	Message string
}

// Line renders the record as its wire line.
func (r Record) Line() string {
	return fmt.Sprintf("%s,%d,%02d,%02d,%s", r.Code, r.Day, r.Hour, r.Minute, r.Message)
}

// Expand flattens alert definitions into single-day records, in definition
// order. An everyday alert yields seven records in ascending day order; a
// day-selected alert yields one record per day in the order the days are
// given. The caller is expected to have validated the definitions, but
// violated invariants still fail with a descriptive error rather than
// producing a malformed payload.
func Expand(alerts []model.AlertDefinition) ([]Record, error) {
	var records []Record
	for i, alert := range alerts {
		if alert.Message == "" {
			return nil, fmt.Errorf("alert %d: empty message", i)
		}
		if alert.Hour < 0 || alert.Hour > 23 {
			return nil, fmt.Errorf("alert %d: hour %d out of range", i, alert.Hour)
		}
		if alert.Minute < 0 || alert.Minute > 59 {
			return nil, fmt.Errorf("alert %d: minute %d out of range", i, alert.Minute)
		}

		days := alert.Days
		if alert.Everyday {
			days = []model.Weekday{
				model.Sunday, model.Monday, model.Tuesday, model.Wednesday,
				model.Thursday, model.Friday, model.Saturday,
			}
		}
		if len(days) == 0 {
			return nil, fmt.Errorf("alert %d: no days to expand", i)
		}

		for _, day := range days {
			if !day.Valid() {
				return nil, fmt.Errorf("alert %d: invalid weekday code %d", i, day)
			}
			records = append(records, Record{
				Code:    alert.Category.Code(),
				Day:     day,
				Hour:    alert.Hour,
				Minute:  alert.Minute,
				Message: alert.Message,
			})
		}
	}
	return records, nil
}

// Encode serializes a device configuration into the firmware text format.
// It is deterministic for identical input ordering and performs no I/O.
func Encode(cfg *model.DeviceConfiguration) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("nil configuration")
	}
	if cfg.DeviceID < model.DeviceIDMin || cfg.DeviceID > model.DeviceIDMax {
		return "", fmt.Errorf("device id %d out of range [%d,%d]", cfg.DeviceID, model.DeviceIDMin, model.DeviceIDMax)
	}
	if len(cfg.Alerts) == 0 {
		return "", fmt.Errorf("configuration has no alerts")
	}

	records, err := Expand(cfg.Alerts)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(records)+3)
	lines = append(lines, strconv.Itoa(len(records)))
	for _, rec := range records {
		lines = append(lines, rec.Line())
	}
	lines = append(lines, fmt.Sprintf("%s,%s,%s", cfg.Contact.Name, cfg.Contact.Phone, cfg.Contact.Email))
	lines = append(lines, cfg.MedicalInfo)
	lines = append(lines, strconv.Itoa(cfg.DeviceID))

	return strings.Join(lines, "\n"), nil
}
