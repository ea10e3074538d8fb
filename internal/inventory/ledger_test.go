package inventory

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-monitor/internal/license"
	"license-monitor/internal/store"
)

func assign(s *Store, userID, licenseID string) (license.Assignment, error) {
	return s.Assign(context.Background(), license.AssignInput{UserID: userID, LicenseID: licenseID})
}

func TestAssignScenario(t *testing.T) {
	s := newTestStore(t, newMemKV())
	u := mustUser(t, s, "u")
	single := mustLicense(t, s, "Single", 1, "2027-01-01")
	full := mustLicense(t, s, "Full", 1, "2027-01-01")
	other := mustUser(t, s, "other")
	_, err := assign(s, other.ID, full.ID)
	require.NoError(t, err)

	a, err := assign(s, u.ID, single.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", a.AccessDate.String(), "access date defaults to today")
	l, _ := s.License(single.ID)
	assert.Equal(t, 1, l.UsedSeats)

	_, err = assign(s, u.ID, single.ID)
	assert.ErrorIs(t, err, license.ErrDuplicateAssignment)

	_, err = assign(s, u.ID, full.ID)
	assert.ErrorIs(t, err, license.ErrNoAvailableSeats)
	l, _ = s.License(full.ID)
	assert.Equal(t, 1, l.UsedSeats)
	assert.Len(t, s.Assignments(), 2)
}

func TestAssignUnknownReferences(t *testing.T) {
	s := newTestStore(t, newMemKV())
	u := mustUser(t, s, "u")
	l := mustLicense(t, s, "L", 2, "2027-01-01")

	_, err := assign(s, "ghost", l.ID)
	assert.ErrorIs(t, err, license.ErrNotFound)
	_, err = assign(s, u.ID, "ghost")
	assert.ErrorIs(t, err, license.ErrNotFound)
}

func TestAssignCommitFailureChangesNothing(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)
	u := mustUser(t, s, "u")
	l := mustLicense(t, s, "L", 2, "2027-01-01")
	storedLicenses := string(kv.data[store.KeyLicenses])

	kv.failPut = errors.New("write failed")
	_, err := assign(s, u.ID, l.ID)
	require.ErrorIs(t, err, license.ErrPersistence)

	got, _ := s.License(l.ID)
	assert.Equal(t, 0, got.UsedSeats)
	assert.Empty(t, s.Assignments())
	assert.Equal(t, storedLicenses, string(kv.data[store.KeyLicenses]))
	assert.Nil(t, kv.data[store.KeyAssignments])

	kv.failPut = nil
	_, err = assign(s, u.ID, l.ID)
	require.NoError(t, err, "the pair is free after a failed commit")
}

func TestUnassignReturnsOneSeat(t *testing.T) {
	s := newTestStore(t, newMemKV())
	l := mustLicense(t, s, "L", 3, "2027-01-01")
	u1 := mustUser(t, s, "u1")
	u2 := mustUser(t, s, "u2")
	a1, err := assign(s, u1.ID, l.ID)
	require.NoError(t, err)
	_, err = assign(s, u2.ID, l.ID)
	require.NoError(t, err)

	require.NoError(t, s.Unassign(context.Background(), a1.ID))
	got, _ := s.License(l.ID)
	assert.Equal(t, 1, got.UsedSeats)
	assert.Len(t, s.Assignments(), 1)

	assert.ErrorIs(t, s.Unassign(context.Background(), a1.ID), license.ErrNotFound)
}

func TestUnassignFloorsAtZero(t *testing.T) {
	kv := newMemKV()
	kv.data[store.KeyLicenses] = []byte(`[{"id":"l1","softwareName":"L","licenseKey":"K","totalSeats":2,"usedSeats":0,"expirationDate":"2027-01-01"}]`)
	kv.data[store.KeyUsers] = []byte(`[{"id":"u1","name":"U","email":"u@example.com","department":""}]`)
	kv.data[store.KeyAssignments] = []byte(`[{"id":"a1","userId":"u1","licenseId":"l1","accessDate":"2026-01-01"}]`)
	s := newTestStore(t, kv)

	require.NoError(t, s.Unassign(context.Background(), "a1"))
	got, _ := s.License("l1")
	assert.Equal(t, 0, got.UsedSeats)
	assert.Empty(t, s.Assignments())
}

func TestUnassignDanglingLicense(t *testing.T) {
	kv := newMemKV()
	kv.data[store.KeyAssignments] = []byte(`[{"id":"a1","userId":"u1","licenseId":"gone","accessDate":"2026-01-01"}]`)
	s := newTestStore(t, kv)

	require.NoError(t, s.Unassign(context.Background(), "a1"))
	assert.Empty(t, s.Assignments())
	assert.Nil(t, kv.data[store.KeyLicenses], "licenses untouched")
}

func TestDeleteLicenseCascades(t *testing.T) {
	s := newTestStore(t, newMemKV())
	doomed := mustLicense(t, s, "Doomed", 5, "2027-01-01")
	kept := mustLicense(t, s, "Kept", 5, "2027-01-01")
	u1 := mustUser(t, s, "u1")
	u2 := mustUser(t, s, "u2")
	for _, u := range []license.User{u1, u2} {
		_, err := assign(s, u.ID, doomed.ID)
		require.NoError(t, err)
	}
	_, err := assign(s, u1.ID, kept.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteLicense(context.Background(), doomed.ID))

	_, ok := s.License(doomed.ID)
	assert.False(t, ok)
	for _, a := range s.Assignments() {
		assert.NotEqual(t, doomed.ID, a.LicenseID)
	}
	assert.Len(t, s.Assignments(), 1)
	got, _ := s.License(kept.ID)
	assert.Equal(t, 1, got.UsedSeats)
	assertSeatsMatchAssignments(t, s)

	_, err = assign(s, u1.ID, doomed.ID)
	assert.ErrorIs(t, err, license.ErrNotFound)
}

func TestDeleteUserReturnsSeats(t *testing.T) {
	s := newTestStore(t, newMemKV())
	a := mustLicense(t, s, "A", 4, "2027-01-01")
	b := mustLicense(t, s, "B", 4, "2027-01-01")
	leaving := mustUser(t, s, "leaving")
	staying := mustUser(t, s, "staying")
	for _, l := range []license.License{a, b} {
		_, err := assign(s, leaving.ID, l.ID)
		require.NoError(t, err)
	}
	_, err := assign(s, staying.ID, a.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(context.Background(), leaving.ID))

	gotA, _ := s.License(a.ID)
	gotB, _ := s.License(b.ID)
	assert.Equal(t, 1, gotA.UsedSeats)
	assert.Equal(t, 0, gotB.UsedSeats)
	assert.Len(t, s.Assignments(), 1)
	_, ok := s.User(leaving.ID)
	assert.False(t, ok)
	assertSeatsMatchAssignments(t, s)

	_, err = assign(s, leaving.ID, a.ID)
	assert.ErrorIs(t, err, license.ErrNotFound)
}

func TestDeleteUserCommitFailureChangesNothing(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)
	l := mustLicense(t, s, "L", 2, "2027-01-01")
	u := mustUser(t, s, "u")
	_, err := assign(s, u.ID, l.ID)
	require.NoError(t, err)

	kv.failPut = errors.New("write failed")
	require.ErrorIs(t, s.DeleteUser(context.Background(), u.ID), license.ErrPersistence)

	_, ok := s.User(u.ID)
	assert.True(t, ok)
	got, _ := s.License(l.ID)
	assert.Equal(t, 1, got.UsedSeats)
	assert.Len(t, s.Assignments(), 1)
}

func TestAvailableLicenses(t *testing.T) {
	s := newTestStore(t, newMemKV())
	open := mustLicense(t, s, "Open", 2, "2027-01-01")
	full := mustLicense(t, s, "Full", 1, "2027-01-01")
	u := mustUser(t, s, "u")
	_, err := assign(s, u.ID, full.ID)
	require.NoError(t, err)

	got := s.AvailableLicenses()
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMemKV())
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 400; i++ {
		lics := s.Licenses()
		users := s.Users()
		asgs := s.Assignments()
		switch op := rng.Intn(10); {
		case op < 2 || len(lics) == 0:
			mustLicense(t, s, "L", 1+rng.Intn(3), "2027-01-01")
		case op < 4 || len(users) == 0:
			mustUser(t, s, "u")
		case op < 8:
			u := users[rng.Intn(len(users))]
			l := lics[rng.Intn(len(lics))]
			before, _ := s.License(l.ID)
			_, err := assign(s, u.ID, l.ID)
			after, _ := s.License(l.ID)
			if err != nil {
				assert.True(t, errors.Is(err, license.ErrDuplicateAssignment) || errors.Is(err, license.ErrNoAvailableSeats), "%v", err)
				assert.Equal(t, before.UsedSeats, after.UsedSeats)
			} else {
				assert.Equal(t, before.UsedSeats+1, after.UsedSeats)
			}
		case op == 8 && len(asgs) > 0:
			require.NoError(t, s.Unassign(ctx, asgs[rng.Intn(len(asgs))].ID))
		default:
			if rng.Intn(2) == 0 {
				require.NoError(t, s.DeleteUser(ctx, users[rng.Intn(len(users))].ID))
			} else {
				require.NoError(t, s.DeleteLicense(ctx, lics[rng.Intn(len(lics))].ID))
			}
		}
		assertSeatsMatchAssignments(t, s)
	}
}
