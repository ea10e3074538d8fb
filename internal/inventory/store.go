// Package inventory owns the license, user and assignment collections and
// keeps seat counts consistent with assignments as records come and go.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"license-monitor/internal/license"
	"license-monitor/internal/store"
)

type pair struct {
	userID    string
	licenseID string
}

// Store is the record store. All methods are safe for concurrent use; every
// operation runs to completion under one lock.
type Store struct {
	mu    sync.Mutex
	kv    store.KV
	clock license.Clock

	licenses    *records[license.License]
	users       *records[license.User]
	assignments *records[license.Assignment]
	pairs       map[pair]string
}

// Open loads the three collections from kv. Missing keys load as empty.
func Open(ctx context.Context, kv store.KV, clock license.Clock) (*Store, error) {
	if clock == nil {
		clock = license.SystemClock{}
	}
	s := &Store{
		kv:          kv,
		clock:       clock,
		licenses:    newRecords(func(l license.License) string { return l.ID }),
		users:       newRecords(func(u license.User) string { return u.ID }),
		assignments: newRecords(func(a license.Assignment) string { return a.ID }),
		pairs:       map[pair]string{},
	}
	var (
		lics  []license.License
		users []license.User
		asgs  []license.Assignment
	)
	if err := load(ctx, kv, store.KeyLicenses, &lics); err != nil {
		return nil, err
	}
	if err := load(ctx, kv, store.KeyUsers, &users); err != nil {
		return nil, err
	}
	if err := load(ctx, kv, store.KeyAssignments, &asgs); err != nil {
		return nil, err
	}
	s.licenses.load(lics)
	s.users.load(users)
	s.assignments.load(asgs)
	for _, a := range s.assignments.list() {
		s.pairs[pair{a.UserID, a.LicenseID}] = a.ID
	}
	s.checkIntegrity()
	return s, nil
}

func load(ctx context.Context, kv store.KV, key string, dst any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return license.Persistence("load "+key, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// checkIntegrity logs stored state that breaks the seat invariants. Nothing is repaired.
func (s *Store) checkIntegrity() {
	for _, l := range s.licenses.list() {
		if l.UsedSeats < 0 || l.UsedSeats > l.TotalSeats {
			log.Warn().Str("license_id", l.ID).Int("used", l.UsedSeats).Int("total", l.TotalSeats).
				Msg("stored seat count out of range")
		}
	}
	for _, a := range s.assignments.list() {
		if _, ok := s.licenses.get(a.LicenseID); !ok {
			log.Warn().Str("assignment_id", a.ID).Str("license_id", a.LicenseID).Msg("assignment references missing license")
		}
		if _, ok := s.users.get(a.UserID); !ok {
			log.Warn().Str("assignment_id", a.ID).Str("user_id", a.UserID).Msg("assignment references missing user")
		}
	}
}

// Now is the store's notion of the current instant.
func (s *Store) Now() time.Time { return s.clock.Now() }

func (s *Store) AddLicense(ctx context.Context, in license.LicenseInput) (license.License, error) {
	exp, err := in.Normalize()
	if err != nil {
		return license.License{}, err
	}
	key := in.LicenseKey
	if key == "" {
		if key, err = license.NewKey(); err != nil {
			return license.License{}, err
		}
	}
	lic := license.License{
		ID:             license.NewID(),
		SoftwareName:   in.SoftwareName,
		LicenseKey:     key,
		TotalSeats:     in.TotalSeats,
		UsedSeats:      0,
		ExpirationDate: exp,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeThrough(ctx, "add license", change{putLicenses: []license.License{lic}}); err != nil {
		return lic, err
	}
	log.Info().Str("license_id", lic.ID).Str("software", lic.SoftwareName).Int("seats", lic.TotalSeats).Msg("license added")
	return lic, nil
}

func (s *Store) AddUser(ctx context.Context, in license.UserInput) (license.User, error) {
	if err := in.Normalize(); err != nil {
		return license.User{}, err
	}
	u := license.User{
		ID:         license.NewID(),
		Name:       in.Name,
		Email:      in.Email,
		Department: in.Department,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeThrough(ctx, "add user", change{putUsers: []license.User{u}}); err != nil {
		return u, err
	}
	log.Info().Str("user_id", u.ID).Msg("user added")
	return u, nil
}

// DeleteLicense removes the license and every assignment that references it.
func (s *Store) DeleteLicense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.licenses.get(id); !ok {
		return fmt.Errorf("license %s: %w", id, license.ErrNotFound)
	}
	c := s.cascadeDeleteForLicense(id)
	c.dropLicenses = append(c.dropLicenses, id)
	if err := s.commit(ctx, "delete license", c); err != nil {
		return err
	}
	log.Info().Str("license_id", id).Int("assignments_removed", len(c.dropAssignments)).Msg("license deleted")
	return nil
}

// DeleteUser removes the user, its assignments, and the seats they held.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users.get(id); !ok {
		return fmt.Errorf("user %s: %w", id, license.ErrNotFound)
	}
	c := s.cascadeDeleteForUser(id)
	c.dropUsers = append(c.dropUsers, id)
	if err := s.commit(ctx, "delete user", c); err != nil {
		return err
	}
	log.Info().Str("user_id", id).Int("assignments_removed", len(c.dropAssignments)).Msg("user deleted")
	return nil
}

func (s *Store) Licenses() []license.License {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.licenses.list()
}

func (s *Store) Users() []license.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.list()
}

func (s *Store) Assignments() []license.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignments.list()
}

func (s *Store) License(id string) (license.License, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.licenses.get(id)
}

func (s *Store) User(id string) (license.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.get(id)
}

// Snapshot copies all three collections under one lock.
func (s *Store) Snapshot() license.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return license.Snapshot{
		Licenses:    s.licenses.list(),
		Users:       s.users.list(),
		Assignments: s.assignments.list(),
	}
}
