package util

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t as seen in loc, as midnight UTC.
// Every date column is stored in this form so that comparisons never
// depend on the offset of the writer.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is DateOf(time.Now(), loc).
func Today(loc *time.Location) time.Time {
	return DateOf(time.Now(), loc)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// SameDate compares calendar dates, ignoring the clock.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateOnly is a time.Time carried on the wire as "YYYY-MM-DD".
type DateOnly struct {
	time.Time
}

func NewDateOnly(t time.Time) DateOnly {
	return DateOnly{Time: DateOf(t, t.Location())}
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d DateOnly) String() string {
	return d.Format(DateLayout)
}

// Scan implements sql.Scanner for date columns.
func (d *DateOnly) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", value)
	}
	return nil
}

func (d *DateOnly) scanString(s string) error {
	if len(s) < len(DateLayout) {
		return fmt.Errorf("cannot scan %q into DateOnly", s)
	}
	t, err := ParseDate(s[:len(DateLayout)])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Value implements driver.Valuer.
func (d DateOnly) Value() (driver.Value, error) {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}
