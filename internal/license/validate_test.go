package license

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseInputNormalize(t *testing.T) {
	in := LicenseInput{SoftwareName: "  Slack Business ", TotalSeats: 10, ExpirationDate: "2026-03-15"}
	exp, err := in.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Slack Business", in.SoftwareName)
	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 15}, exp)
}

func TestLicenseInputRejects(t *testing.T) {
	cases := map[string]struct {
		in    LicenseInput
		field string
	}{
		"missing name":  {LicenseInput{TotalSeats: 1, ExpirationDate: "2026-01-01"}, "softwareName"},
		"zero seats":    {LicenseInput{SoftwareName: "x", TotalSeats: 0, ExpirationDate: "2026-01-01"}, "totalSeats"},
		"negative seat": {LicenseInput{SoftwareName: "x", TotalSeats: -3, ExpirationDate: "2026-01-01"}, "totalSeats"},
		"missing date":  {LicenseInput{SoftwareName: "x", TotalSeats: 1}, "expirationDate"},
		"bad date":      {LicenseInput{SoftwareName: "x", TotalSeats: 1, ExpirationDate: "soon"}, "expirationDate"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.in.Normalize()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, c.field, verr.Field)
		})
	}
}

func TestUserInputNormalize(t *testing.T) {
	ok := UserInput{Name: "Sarah Johnson", Email: "sarah.johnson@company.com"}
	require.NoError(t, ok.Normalize())

	bad := UserInput{Name: "Sarah", Email: "not-an-email"}
	err := bad.Normalize()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)
	assert.Equal(t, "must be a valid email address", verr.Reason)
}

func TestAssignInputDefaultsAccessDate(t *testing.T) {
	now := time.Date(2026, time.October, 19, 15, 0, 0, 0, time.UTC)
	in := AssignInput{UserID: "u", LicenseID: "l"}
	d, err := in.Normalize(now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", d.String())

	in = AssignInput{UserID: "u"}
	_, err = in.Normalize(now)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewKeyAndID(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^LIC-[A-Z2-7]{4}(-[A-Z2-7]{4}){3}$`), key)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
