package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// StringList accepts either a JSON array of strings or a single string with
// items separated by "|".
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = StringList{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitList(s, "|")
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.New("expected an array of strings or a '|' separated string")
	}
	*l = cleanList(items)
	return nil
}

// SplitList splits s on sep, trimming items and dropping empty ones.
func SplitList(s, sep string) StringList {
	return cleanList(strings.Split(s, sep))
}

func cleanList(items []string) StringList {
	out := make(StringList, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// dateLayouts are tried in order when decoding a Date.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// Date accepts dd/mm/yyyy, yyyy-mm-dd or RFC 3339 timestamps.
type Date struct {
	time.Time
}

// ParseDate parses s with the accepted layouts. Dates without a time are UTC
// midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use dd/mm/yyyy, yyyy-mm-dd or RFC 3339", s)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("date must be a string")
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}
