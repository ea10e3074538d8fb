package report

import (
	"sort"
	"strings"
	"time"

	"license-monitor/internal/license"
)

// Sheet names of the exported workbook.
const (
	SheetLicenses    = "Licenses"
	SheetUsers       = "Users"
	SheetAssignments = "Assignments"
	SheetExpiration  = "Expiration Report"
)

type LicenseRow struct {
	SoftwareName   string
	LicenseKey     string
	TotalSeats     int
	UsedSeats      int
	AvailableSeats int
	ExpirationDate string
	DaysRemaining  int
	Status         license.Status
}

type UserRow struct {
	Name           string
	Email          string
	Department     string
	ActiveLicenses int
}

type AssignmentRow struct {
	UserName       string
	UserEmail      string
	Software       string
	AccessDate     string
	ExpirationDate string
	DaysRemaining  int
	Status         license.Status
}

type ExpirationRow struct {
	Software            string
	ExpirationDate      string
	DaysUntilExpiration int
	Status              license.Status
	UsersAffected       int
	UserNames           string
}

type Export struct {
	GeneratedAt time.Time
	Licenses    []LicenseRow
	Users       []UserRow
	Assignments []AssignmentRow
	Expiration  []ExpirationRow
}

// BuildExport projects the snapshot into flat rows, one shape per sheet.
// Assignments whose user or license is gone are left out.
func BuildExport(snap license.Snapshot, now time.Time) Export {
	lics, users := snap.Index()
	holders := holdersByLicense(snap, users)
	exp := Export{GeneratedAt: now}

	for _, l := range snap.Licenses {
		days := license.DaysRemaining(l.ExpirationDate, now)
		exp.Licenses = append(exp.Licenses, LicenseRow{
			SoftwareName:   l.SoftwareName,
			LicenseKey:     l.LicenseKey,
			TotalSeats:     l.TotalSeats,
			UsedSeats:      l.UsedSeats,
			AvailableSeats: l.Available(),
			ExpirationDate: l.ExpirationDate.Display(),
			DaysRemaining:  days,
			Status:         license.StatusFor(days),
		})
	}

	active := map[string]int{}
	for _, a := range snap.Assignments {
		u, uok := users[a.UserID]
		l, lok := lics[a.LicenseID]
		if !uok || !lok {
			continue
		}
		active[u.ID]++
		days := license.DaysRemaining(l.ExpirationDate, now)
		exp.Assignments = append(exp.Assignments, AssignmentRow{
			UserName:       u.Name,
			UserEmail:      u.Email,
			Software:       l.SoftwareName,
			AccessDate:     a.AccessDate.Display(),
			ExpirationDate: l.ExpirationDate.Display(),
			DaysRemaining:  days,
			Status:         license.StatusFor(days),
		})
	}

	for _, u := range snap.Users {
		dept := u.Department
		if strings.TrimSpace(dept) == "" {
			dept = "-"
		}
		exp.Users = append(exp.Users, UserRow{
			Name:           u.Name,
			Email:          u.Email,
			Department:     dept,
			ActiveLicenses: active[u.ID],
		})
	}

	for _, l := range snap.Licenses {
		days := license.DaysRemaining(l.ExpirationDate, now)
		names := make([]string, 0, len(holders[l.ID]))
		for _, u := range holders[l.ID] {
			names = append(names, u.Name)
		}
		joined := strings.Join(names, ", ")
		if joined == "" {
			joined = "None"
		}
		exp.Expiration = append(exp.Expiration, ExpirationRow{
			Software:            l.SoftwareName,
			ExpirationDate:      l.ExpirationDate.Display(),
			DaysUntilExpiration: days,
			Status:              license.StatusFor(days),
			UsersAffected:       len(names),
			UserNames:           joined,
		})
	}
	sort.SliceStable(exp.Expiration, func(i, j int) bool {
		return exp.Expiration[i].DaysUntilExpiration < exp.Expiration[j].DaysUntilExpiration
	})
	return exp
}

// Sheet is one tabular page of an export.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Sheets lays the export out in workbook order.
func (e Export) Sheets() []Sheet {
	return []Sheet{e.LicensesSheet(), e.usersSheet(), e.assignmentsSheet(), e.expirationSheet()}
}

func (e Export) LicensesSheet() Sheet {
	s := Sheet{
		Name: SheetLicenses,
		Header: []string{"Software Name", "License Key", "Total Seats", "Used Seats", "Available Seats",
			"Expiration Date", "Days Remaining", "Status"},
	}
	for _, r := range e.Licenses {
		s.Rows = append(s.Rows, []any{r.SoftwareName, r.LicenseKey, r.TotalSeats, r.UsedSeats, r.AvailableSeats,
			r.ExpirationDate, r.DaysRemaining, string(r.Status)})
	}
	return s
}

func (e Export) usersSheet() Sheet {
	s := Sheet{Name: SheetUsers, Header: []string{"User Name", "Email", "Department", "Active Licenses"}}
	for _, r := range e.Users {
		s.Rows = append(s.Rows, []any{r.Name, r.Email, r.Department, r.ActiveLicenses})
	}
	return s
}

func (e Export) assignmentsSheet() Sheet {
	s := Sheet{
		Name: SheetAssignments,
		Header: []string{"User Name", "User Email", "Software", "Access Date", "Expiration Date",
			"Days Remaining", "Status"},
	}
	for _, r := range e.Assignments {
		s.Rows = append(s.Rows, []any{r.UserName, r.UserEmail, r.Software, r.AccessDate, r.ExpirationDate,
			r.DaysRemaining, string(r.Status)})
	}
	return s
}

func (e Export) expirationSheet() Sheet {
	s := Sheet{
		Name: SheetExpiration,
		Header: []string{"Software", "Expiration Date", "Days Until Expiration", "Status", "Users Affected",
			"User Names"},
	}
	for _, r := range e.Expiration {
		s.Rows = append(s.Rows, []any{r.Software, r.ExpirationDate, r.DaysUntilExpiration, string(r.Status),
			r.UsersAffected, r.UserNames})
	}
	return s
}
