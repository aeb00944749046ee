package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a calendar date without a time of day, written as YYYY-MM-DD.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string. Exactly three numeric fields that form
// a real calendar date are accepted.
func ParseDate(s string) (Date, error) {
	fields := strings.Split(s, "-")
	if len(fields) != 3 {
		return Date{}, fmt.Errorf("invalid date format %q", s)
	}

	nums := make([]int, len(fields))
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return Date{}, fmt.Errorf("invalid date format %q: component %q is not a number", s, field)
		}
		nums[i] = n
	}

	d := Date{Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}
	t := d.Time()
	if t.Year() != d.Year || t.Month() != d.Month || t.Day() != d.Day {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Timestamp is an ISO 8601 date-time. Values without a zone offset are UTC.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t *Timestamp) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseTimestamp(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
