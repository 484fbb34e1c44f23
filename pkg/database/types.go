package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringArray stores a list of strings in a single text column as a JSON
// array. Scan also accepts the PostgreSQL array literal ({a,b,"c d"}) so rows
// written by native TEXT[] columns can be read back.
type StringArray []string

// NewStringArray trims every item and drops empty ones.
func NewStringArray(items ...string) StringArray {
	out := make(StringArray, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// Scan implements the sql.Scanner interface for reading from the database.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return a.decode(string(v))
	case string:
		return a.decode(v)
	default:
		return errors.New("StringArray: unsupported scan type")
	}
}

func (a *StringArray) decode(s string) error {
	switch {
	case s == "":
		*a = StringArray{}
		return nil
	case strings.HasPrefix(s, "["):
		return json.Unmarshal([]byte(s), (*[]string)(a))
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		*a = parsePostgresArray(s[1 : len(s)-1])
		return nil
	default:
		*a = StringArray{s}
		return nil
	}
}

// parsePostgresArray parses the body of a PostgreSQL array literal, honouring
// double quotes and backslash escapes.
func parsePostgresArray(s string) StringArray {
	result := StringArray{}
	if s == "" {
		return result
	}

	var current strings.Builder
	inQuotes, escaped := false, false

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(result, current.String())
}

// Value implements the driver.Valuer interface. Nil is stored as an empty
// array so LIKE filters over the column never see NULL.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (StringArray) GormDataType() string {
	return "text"
}
