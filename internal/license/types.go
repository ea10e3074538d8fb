package license

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time zone. It encodes as "YYYY-MM-DD".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool { return d == Date{} }

// In returns midnight at the start of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.In(time.UTC).Format(dateLayout)
}

// Display renders d the way the dashboard and exports show it, e.g. "Dec 31, 2026".
func (d Date) Display() string {
	if d.IsZero() {
		return "-"
	}
	return d.In(time.UTC).Format("Jan 2, 2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type License struct {
	ID             string `json:"id"`
	SoftwareName   string `json:"softwareName"`
	LicenseKey     string `json:"licenseKey"`
	TotalSeats     int    `json:"totalSeats"`
	UsedSeats      int    `json:"usedSeats"`
	ExpirationDate Date   `json:"expirationDate"`
}

// Available is the number of seats that can still be assigned.
func (l License) Available() int { return l.TotalSeats - l.UsedSeats }

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type Assignment struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	LicenseID  string `json:"licenseId"`
	AccessDate Date   `json:"accessDate"`
}

// Snapshot is a point-in-time copy of all three collections in listing order.
type Snapshot struct {
	Licenses    []License
	Users       []User
	Assignments []Assignment
}

// Index builds id lookups over the snapshot for joins.
func (s Snapshot) Index() (map[string]License, map[string]User) {
	lics := make(map[string]License, len(s.Licenses))
	for _, l := range s.Licenses {
		lics[l.ID] = l
	}
	users := make(map[string]User, len(s.Users))
	for _, u := range s.Users {
		users[u.ID] = u
	}
	return lics, users
}
