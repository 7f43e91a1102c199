package models

import (
	"bytes"
	"time"
)

// espnTimeLayouts lists the date formats seen on ESPN endpoints. Schedule
// documents commonly omit seconds ("2024-09-07T16:00Z").
var espnTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// ESPNTime is a time.Time that decodes every ESPN date format. A date in
// any other form, such as "TBD", decodes to the zero time.
type ESPNTime struct {
	time.Time
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *ESPNTime) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		return nil
	}

	t.Time = time.Time{}
	for _, layout := range espnTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}
