package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"license-monitor/internal/license"
)

// Assign binds a user to a license and takes one seat. The incremented
// license and the new assignment are stored together or not at all.
func (s *Store) Assign(ctx context.Context, in license.AssignInput) (license.Assignment, error) {
	accessDate, err := in.Normalize(s.clock.Now())
	if err != nil {
		return license.Assignment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.get(in.UserID); !ok {
		return license.Assignment{}, fmt.Errorf("user %s: %w", in.UserID, license.ErrNotFound)
	}
	lic, ok := s.licenses.get(in.LicenseID)
	if !ok {
		return license.Assignment{}, fmt.Errorf("license %s: %w", in.LicenseID, license.ErrNotFound)
	}
	if _, dup := s.pairs[pair{in.UserID, in.LicenseID}]; dup {
		return license.Assignment{}, license.ErrDuplicateAssignment
	}
	if lic.UsedSeats >= lic.TotalSeats {
		return license.Assignment{}, license.ErrNoAvailableSeats
	}

	lic.UsedSeats++
	a := license.Assignment{
		ID:         license.NewID(),
		UserID:     in.UserID,
		LicenseID:  in.LicenseID,
		AccessDate: accessDate,
	}
	c := change{
		putLicenses:    []license.License{lic},
		putAssignments: []license.Assignment{a},
	}
	if err := s.commit(ctx, "assign", c); err != nil {
		return license.Assignment{}, err
	}
	log.Info().Str("assignment_id", a.ID).Str("user_id", a.UserID).Str("license_id", a.LicenseID).
		Int("used", lic.UsedSeats).Int("total", lic.TotalSeats).Msg("license assigned")
	return a, nil
}

// Unassign removes an assignment and returns its seat.
func (s *Store) Unassign(ctx context.Context, assignmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignments.get(assignmentID)
	if !ok {
		return fmt.Errorf("assignment %s: %w", assignmentID, license.ErrNotFound)
	}
	c := change{dropAssignments: []string{a.ID}}
	if lic, ok := s.licenses.get(a.LicenseID); ok {
		c.putLicenses = []license.License{release(lic, 1)}
	}
	if err := s.commit(ctx, "unassign", c); err != nil {
		return err
	}
	log.Info().Str("assignment_id", a.ID).Str("license_id", a.LicenseID).Msg("license unassigned")
	return nil
}

// AvailableLicenses lists licenses that still have a free seat.
func (s *Store) AvailableLicenses() []license.License {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []license.License
	for _, l := range s.licenses.list() {
		if l.UsedSeats < l.TotalSeats {
			out = append(out, l)
		}
	}
	return out
}

// cascadeDeleteForLicense drops every assignment of the license. The
// license is going away, so no seats are returned.
func (s *Store) cascadeDeleteForLicense(licenseID string) change {
	var c change
	for _, a := range s.assignments.list() {
		if a.LicenseID == licenseID {
			c.dropAssignments = append(c.dropAssignments, a.ID)
		}
	}
	return c
}

// cascadeDeleteForUser drops every assignment of the user and returns one
// seat per dropped assignment to its license.
func (s *Store) cascadeDeleteForUser(userID string) change {
	var c change
	freed := map[string]int{}
	var order []string
	for _, a := range s.assignments.list() {
		if a.UserID != userID {
			continue
		}
		c.dropAssignments = append(c.dropAssignments, a.ID)
		if _, ok := s.licenses.get(a.LicenseID); !ok {
			continue
		}
		if freed[a.LicenseID] == 0 {
			order = append(order, a.LicenseID)
		}
		freed[a.LicenseID]++
	}
	for _, id := range order {
		lic, _ := s.licenses.get(id)
		c.putLicenses = append(c.putLicenses, release(lic, freed[id]))
	}
	return c
}

// release returns n seats to lic, never going below zero.
func release(lic license.License, n int) license.License {
	if lic.UsedSeats < n {
		log.Warn().Str("license_id", lic.ID).Int("used", lic.UsedSeats).Int("released", n).
			Msg("seat count would go negative, clamping at zero")
		lic.UsedSeats = 0
		return lic
	}
	lic.UsedSeats -= n
	return lic
}
