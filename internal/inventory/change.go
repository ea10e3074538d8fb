package inventory

import (
	"context"
	"encoding/json"

	"license-monitor/internal/license"
	"license-monitor/internal/store"
)

// change is a set of record writes spanning one or more collections.
type change struct {
	putLicenses     []license.License
	dropLicenses    []string
	putUsers        []license.User
	dropUsers       []string
	putAssignments  []license.Assignment
	dropAssignments []string
}

func (c change) touchesLicenses() bool    { return len(c.putLicenses)+len(c.dropLicenses) > 0 }
func (c change) touchesUsers() bool       { return len(c.putUsers)+len(c.dropUsers) > 0 }
func (c change) touchesAssignments() bool { return len(c.putAssignments)+len(c.dropAssignments) > 0 }

// entries encodes every collection c touches as it will look once c is applied.
func (s *Store) entries(c change) ([]store.Entry, error) {
	var out []store.Entry
	add := func(key string, v any) error {
		buf, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out = append(out, store.Entry{Key: key, Value: buf})
		return nil
	}
	if c.touchesLicenses() {
		if err := add(store.KeyLicenses, s.licenses.staged(c.putLicenses, c.dropLicenses)); err != nil {
			return nil, err
		}
	}
	if c.touchesUsers() {
		if err := add(store.KeyUsers, s.users.staged(c.putUsers, c.dropUsers)); err != nil {
			return nil, err
		}
	}
	if c.touchesAssignments() {
		if err := add(store.KeyAssignments, s.assignments.staged(c.putAssignments, c.dropAssignments)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) apply(c change) {
	for _, l := range c.putLicenses {
		s.licenses.put(l)
	}
	for _, id := range c.dropLicenses {
		s.licenses.remove(id)
	}
	for _, u := range c.putUsers {
		s.users.put(u)
	}
	for _, id := range c.dropUsers {
		s.users.remove(id)
	}
	for _, a := range c.putAssignments {
		s.assignments.put(a)
		s.pairs[pair{a.UserID, a.LicenseID}] = a.ID
	}
	for _, id := range c.dropAssignments {
		if a, ok := s.assignments.get(id); ok {
			delete(s.pairs, pair{a.UserID, a.LicenseID})
		}
		s.assignments.remove(id)
	}
}

// commit persists every touched collection in one batch and applies c in
// memory only once the batch is stored. On failure neither side changes.
func (s *Store) commit(ctx context.Context, op string, c change) error {
	entries, err := s.entries(c)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, entries...); err != nil {
		return license.Persistence(op, err)
	}
	s.apply(c)
	return nil
}

// writeThrough applies c in memory first and then persists it. A failed
// write leaves the in-memory change in place; the next successful write of
// the same collection stores it.
func (s *Store) writeThrough(ctx context.Context, op string, c change) error {
	s.apply(c)
	// Staging an applied change again yields the current listing.
	entries, err := s.entries(c)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, entries...); err != nil {
		return license.Persistence(op, err)
	}
	return nil
}
