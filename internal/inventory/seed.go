package inventory

import (
	"context"

	"github.com/rs/zerolog/log"

	"license-monitor/internal/license"
)

var (
	sampleLicenses = []license.LicenseInput{
		{SoftwareName: "Microsoft Office 365", LicenseKey: "XXXXX-XXXXX-XXXXX-XXXXX", TotalSeats: 50, ExpirationDate: "2026-12-31"},
		{SoftwareName: "Adobe Creative Cloud", LicenseKey: "ADOBE-XXXXX-XXXXX-XXXXX", TotalSeats: 20, ExpirationDate: "2026-06-30"},
		{SoftwareName: "Slack Business", LicenseKey: "SLACK-XXXXX-XXXXX-XXXXX", TotalSeats: 100, ExpirationDate: "2026-03-15"},
	}
	sampleUsers = []license.UserInput{
		{Name: "John Smith", Email: "john.smith@company.com", Department: "Engineering"},
		{Name: "Sarah Johnson", Email: "sarah.johnson@company.com", Department: "Design"},
		{Name: "Michael Brown", Email: "michael.brown@company.com", Department: "Marketing"},
	}
)

// Seed fills an empty store with sample licenses, users and two
// assignments. It reports false and does nothing if any record exists.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	empty := s.licenses.len() == 0 && s.users.len() == 0 && s.assignments.len() == 0
	s.mu.Unlock()
	if !empty {
		return false, nil
	}

	lics := make([]license.License, 0, len(sampleLicenses))
	for _, in := range sampleLicenses {
		l, err := s.AddLicense(ctx, in)
		if err != nil {
			return false, err
		}
		lics = append(lics, l)
	}
	users := make([]license.User, 0, len(sampleUsers))
	for _, in := range sampleUsers {
		u, err := s.AddUser(ctx, in)
		if err != nil {
			return false, err
		}
		users = append(users, u)
	}
	for _, in := range []license.AssignInput{
		{UserID: users[0].ID, LicenseID: lics[0].ID, AccessDate: "2026-01-15"},
		{UserID: users[1].ID, LicenseID: lics[1].ID, AccessDate: "2026-02-01"},
	} {
		if _, err := s.Assign(ctx, in); err != nil {
			return false, err
		}
	}
	log.Info().Int("licenses", len(lics)).Int("users", len(users)).Msg("sample data seeded")
	return true, nil
}
