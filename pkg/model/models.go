package model

import "time"

// Weekday is a device weekday code: 0=Sunday .. 6=Saturday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Valid reports whether the weekday code is in the 0..6 range the firmware accepts.
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

func (w Weekday) String() string {
	names := [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if !w.Valid() {
		return "Unknown"
	}
	return names[w]
}

// AlertCategory classifies an alert on the device.
type AlertCategory string

const (
	CategoryReminder AlertCategory = "Reminder"
	CategoryMedicine AlertCategory = "Medicine"
)

// Code returns the single-character category code used on the wire.
func (c AlertCategory) Code() string {
	if c == CategoryMedicine {
		return "m"
	}
	return "r"
}

// Valid reports whether the category is one the device understands.
func (c AlertCategory) Valid() bool {
	return c == CategoryReminder || c == CategoryMedicine
}

// DeviceIDMin and DeviceIDMax bound the identifiers the wearable firmware accepts.
const (
	DeviceIDMin = 1
	DeviceIDMax = 100
)

// ContactProfile holds the caregiver contact information shown by the device
// in an emergency.
type ContactProfile struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// AlertDefinition is one row of the weekly schedule as authored by the
// caregiver. When Everyday is set the alert fires on all seven days and Days
// is ignored; otherwise Days must contain at least one weekday code.
type AlertDefinition struct {
	Message  string        `json:"message"`
	Category AlertCategory `json:"category"`
	Everyday bool          `json:"everyday"`
	Days     []Weekday     `json:"days,omitempty"`
	Hour     int           `json:"hour"`
	Minute   int           `json:"minute"`
}

// ExpandedCount returns the number of single-day records this definition
// expands to on the wire.
func (a AlertDefinition) ExpandedCount() int {
	if a.Everyday {
		return 7
	}
	return len(a.Days)
}

// DeviceConfiguration is the full unit of configuration for one wearable:
// contact profile, medical notes, target device id and the alert schedule.
type DeviceConfiguration struct {
	Contact     ContactProfile    `json:"contact"`
	MedicalInfo string            `json:"medical_info"`
	DeviceID    int               `json:"device_id"`
	Alerts      []AlertDefinition `json:"alerts"`
}

// ExpandedCount returns the total number of expanded alert records the
// configuration serializes to.
func (c DeviceConfiguration) ExpandedCount() int {
	total := 0
	for _, a := range c.Alerts {
		total += a.ExpandedCount()
	}
	return total
}

// SavedConfiguration is a persisted DeviceConfiguration. Instances are created
// on successful encode, carry the serialized payload for redisplay and
// re-export, and are never mutated afterwards.
type SavedConfiguration struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	DeviceConfiguration
	Payload string `json:"payload"`
}
