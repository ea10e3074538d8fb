// Package report derives alerts, dashboard statistics and export rows from
// a snapshot of the inventory. Every function is a pure projection.
package report

import (
	"fmt"
	"time"

	"license-monitor/internal/license"
)

type AlertKind string

const (
	AlertExpired         AlertKind = "expired"
	AlertExpiringSoon    AlertKind = "expiring_soon"
	AlertLowAvailability AlertKind = "low_availability"
)

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
)

type Alert struct {
	Kind          AlertKind `json:"kind"`
	Severity      Severity  `json:"severity"`
	LicenseID     string    `json:"licenseId"`
	SoftwareName  string    `json:"softwareName"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	DaysRemaining int       `json:"daysRemaining"`
	AffectedUsers int       `json:"affectedUsers"`
	Available     int       `json:"available"`
}

// Alerts walks licenses in listing order. Expiration and seat availability
// are checked independently, so one license yields zero, one or two alerts.
func Alerts(snap license.Snapshot, now time.Time) []Alert {
	_, users := snap.Index()
	holders := holdersByLicense(snap, users)

	var out []Alert
	for _, l := range snap.Licenses {
		days := license.DaysRemaining(l.ExpirationDate, now)
		affected := len(holders[l.ID])
		available := l.Available()
		base := Alert{
			LicenseID:     l.ID,
			SoftwareName:  l.SoftwareName,
			DaysRemaining: days,
			AffectedUsers: affected,
			Available:     available,
		}

		switch license.StatusFor(days) {
		case license.StatusExpired:
			a := base
			a.Kind, a.Severity = AlertExpired, SeverityDanger
			a.Title = l.SoftwareName + " - License Expired"
			a.Message = fmt.Sprintf("This license expired %d days ago. %d users affected.", -days, affected)
			out = append(out, a)
		case license.StatusExpiringSoon:
			a := base
			a.Kind, a.Severity = AlertExpiringSoon, SeverityWarning
			a.Title = l.SoftwareName + " - Expiring Soon"
			a.Message = fmt.Sprintf("This license will expire in %d days (%s). %d users affected.",
				days, l.ExpirationDate.Display(), affected)
			out = append(out, a)
		}

		if available > 0 && available <= license.LowAvailabilitySeats {
			a := base
			a.Kind, a.Severity = AlertLowAvailability, SeverityWarning
			a.Title = l.SoftwareName + " - Low Availability"
			a.Message = fmt.Sprintf("Only %d seat(s) remaining out of %d.", available, l.TotalSeats)
			out = append(out, a)
		}
	}
	return out
}

// holdersByLicense maps license id to the users holding it, skipping
// assignments whose user no longer exists.
func holdersByLicense(snap license.Snapshot, users map[string]license.User) map[string][]license.User {
	out := map[string][]license.User{}
	for _, a := range snap.Assignments {
		u, ok := users[a.UserID]
		if !ok {
			continue
		}
		out[a.LicenseID] = append(out[a.LicenseID], u)
	}
	return out
}
