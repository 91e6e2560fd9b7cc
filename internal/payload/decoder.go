package payload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wristcare/alertband-backend/pkg/model"
)

// Document is a parsed payload: the expanded record list plus the trailing
// scalar fields. It is the inverse view of what Encode produces.
type Document struct {
	Records     []Record
	Contact     model.ContactProfile
	MedicalInfo string
	DeviceID    int
}

// Parse decodes a payload back into its records and scalar fields. The
// medical-info block is positional: everything between the contact line and
// the final device-id line, so embedded newlines in it survive a round trip.
// Parsing is lossless for payloads whose text fields contain no commas.
func Parse(text string) (*Document, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 4 {
		return nil, fmt.Errorf("payload too short: %d lines", len(lines))
	}

	count, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, fmt.Errorf("invalid record count %q: %w", lines[0], err)
	}
	if count < 0 || len(lines) < count+4 {
		return nil, fmt.Errorf("record count %d does not fit %d lines", count, len(lines))
	}

	doc := &Document{Records: make([]Record, 0, count)}
	for i := 1; i <= count; i++ {
		rec, err := parseRecord(lines[i])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		doc.Records = append(doc.Records, rec)
	}

	contactFields := strings.Split(lines[count+1], ",")
	if len(contactFields) != 3 {
		return nil, fmt.Errorf("contact line has %d fields, want 3", len(contactFields))
	}
	doc.Contact = model.ContactProfile{
		Name:  contactFields[0],
		Phone: contactFields[1],
		Email: contactFields[2],
	}

	doc.MedicalInfo = strings.Join(lines[count+2:len(lines)-1], "\n")

	deviceID, err := strconv.Atoi(lines[len(lines)-1])
	if err != nil {
		return nil, fmt.Errorf("invalid device id %q: %w", lines[len(lines)-1], err)
	}
	if deviceID < model.DeviceIDMin || deviceID > model.DeviceIDMax {
		return nil, fmt.Errorf("device id %d out of range [%d,%d]", deviceID, model.DeviceIDMin, model.DeviceIDMax)
	}
	doc.DeviceID = deviceID

	return doc, nil
}

// parseRecord decodes one `code,day,HH,MM,message` line. The message field is
// the unescaped remainder, so a record line always splits into exactly five
// parts from the left.
func parseRecord(line string) (Record, error) {
	parts := strings.SplitN(line, ",", 5)
	if len(parts) != 5 {
		return Record{}, fmt.Errorf("malformed record line %q", line)
	}

	code := parts[0]
	if code != "r" && code != "m" {
		return Record{}, fmt.Errorf("unknown category code %q", code)
	}

	day, err := strconv.Atoi(parts[1])
	if err != nil || !model.Weekday(day).Valid() {
		return Record{}, fmt.Errorf("invalid day %q", parts[1])
	}

	hour, err := strconv.Atoi(parts[2])
	if err != nil || hour < 0 || hour > 23 {
		return Record{}, fmt.Errorf("invalid hour %q", parts[2])
	}

	minute, err := strconv.Atoi(parts[3])
	if err != nil || minute < 0 || minute > 59 {
		return Record{}, fmt.Errorf("invalid minute %q", parts[3])
	}

	return Record{
		Code:    code,
		Day:     model.Weekday(day),
		Hour:    hour,
		Minute:  minute,
		Message: parts[4],
	}, nil
}
