package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"license-monitor/internal/license"
	"license-monitor/internal/report"
)

// Telegram rejects messages over 4096 characters.
const maxListed = 30

func parseLicenseInput(text string) (license.LicenseInput, error) {
	parts := splitPipes(text)
	if len(parts) != 4 {
		return license.LicenseInput{}, errors.New("Invalid input. Format: name | key | seats | YYYY-MM-DD")
	}
	seats, err := strconv.Atoi(parts[2])
	if err != nil || seats <= 0 {
		return license.LicenseInput{}, errors.New("Seats must be a positive number")
	}
	return license.LicenseInput{
		SoftwareName:   parts[0],
		LicenseKey:     parts[1],
		TotalSeats:     seats,
		ExpirationDate: parts[3],
	}, nil
}

func parseUserInput(text string) (license.UserInput, error) {
	parts := splitPipes(text)
	if len(parts) < 2 || len(parts) > 3 {
		return license.UserInput{}, errors.New("Invalid input. Format: name | email | department")
	}
	in := license.UserInput{Name: parts[0], Email: parts[1]}
	if len(parts) == 3 {
		in.Department = parts[2]
	}
	return in, nil
}

func parseAssignInput(text string) (license.AssignInput, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 || len(fields) > 3 {
		return license.AssignInput{}, errors.New("Invalid input. Format: <userId> <licenseId> [YYYY-MM-DD]")
	}
	in := license.AssignInput{UserID: fields[0], LicenseID: fields[1]}
	if len(fields) == 3 {
		in.AccessDate = fields[2]
	}
	return in, nil
}

func splitPipes(text string) []string {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func errorText(err error) string {
	var verr *license.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Reason)
	case errors.Is(err, license.ErrDuplicateAssignment):
		return "This user already has this license assigned!"
	case errors.Is(err, license.ErrNoAvailableSeats):
		return "No available seats for this license!"
	default:
		return "Error: " + err.Error()
	}
}

func formatLicenses(list []license.License, now time.Time) string {
	if len(list) == 0 {
		return "No licenses found. Add your first license!"
	}
	lines := []string{"Licenses:"}
	for i, l := range list {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("... (%d more)", len(list)-maxListed))
			break
		}
		lines = append(lines, fmt.Sprintf("- %s | %d/%d used | %s | %s\n  id: %s",
			l.SoftwareName, l.UsedSeats, l.TotalSeats, l.ExpirationDate.Display(),
			license.StatusAt(l.ExpirationDate, now), l.ID))
	}
	return strings.Join(lines, "\n")
}

func formatUsers(snap license.Snapshot) string {
	if len(snap.Users) == 0 {
		return "No users found. Add your first user!"
	}
	active := map[string]int{}
	for _, a := range snap.Assignments {
		active[a.UserID]++
	}
	lines := []string{"Users:"}
	for i, u := range snap.Users {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("... (%d more)", len(snap.Users)-maxListed))
			break
		}
		dept := u.Department
		if dept == "" {
			dept = "-"
		}
		lines = append(lines, fmt.Sprintf("- %s <%s> | %s | %d licenses\n  id: %s", u.Name, u.Email, dept, active[u.ID], u.ID))
	}
	return strings.Join(lines, "\n")
}

func formatAssignments(snap license.Snapshot) string {
	lics, users := snap.Index()
	lines := []string{"Assignments:"}
	shown := 0
	for _, a := range snap.Assignments {
		u, uok := users[a.UserID]
		l, lok := lics[a.LicenseID]
		if !uok || !lok {
			continue
		}
		if shown == maxListed {
			lines = append(lines, "...")
			break
		}
		shown++
		lines = append(lines, fmt.Sprintf("- %s → %s (since %s)\n  id: %s", u.Name, l.SoftwareName, a.AccessDate.Display(), a.ID))
	}
	if shown == 0 {
		return "No assignments found. Assign a license to a user!"
	}
	return strings.Join(lines, "\n")
}

func formatAlerts(alerts []report.Alert) string {
	if len(alerts) == 0 {
		return "✅ All licenses are in good standing!"
	}
	lines := make([]string, 0, len(alerts))
	for _, a := range alerts {
		icon := "⚠️"
		switch a.Kind {
		case report.AlertExpired:
			icon = "🚨"
		case report.AlertLowAvailability:
			icon = "📊"
		}
		lines = append(lines, fmt.Sprintf("%s %s\n%s", icon, a.Title, a.Message))
	}
	return strings.Join(lines, "\n\n")
}

func formatStats(st report.Stats) string {
	return fmt.Sprintf("Total licenses: %d\nAvailable seats: %d\nExpiring soon: %d\nExpired: %d\nUsers: %d\nAssignments: %d",
		st.TotalLicenses, st.AvailableSeats, st.ExpiringSoon, st.Expired, st.TotalUsers, st.TotalAssignments)
}
