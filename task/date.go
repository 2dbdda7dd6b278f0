package task

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
)

type (
	// Date is a calendar date without a time component. Due dates
	// are compared day by day, the time of day never matters.
	Date struct {
		t time.Time
	}
)

func ParseDate(val string) (Date, error) {
	t, err := time.Parse(dateLayout, val)
	if err != nil {
		return Date{}, fmt.Errorf("unable to parse %v as a date, cause %w", val, err)
	}
	return Date{t: t}, nil
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(buf []byte) error {
	if len(buf) < 2 || buf[0] != '"' || buf[len(buf)-1] != '"' {
		return fmt.Errorf("unable to parse %s as a date", buf)
	}
	parsed, err := ParseDate(string(buf[1 : len(buf)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
