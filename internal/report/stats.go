package report

import (
	"time"

	"license-monitor/internal/license"
)

type Stats struct {
	TotalLicenses    int `json:"totalLicenses"`
	AvailableSeats   int `json:"availableSeats"`
	ExpiringSoon     int `json:"expiringSoon"`
	Expired          int `json:"expired"`
	TotalUsers       int `json:"totalUsers"`
	TotalAssignments int `json:"totalAssignments"`
}

// ComputeStats recomputes every aggregate from scratch.
func ComputeStats(snap license.Snapshot, now time.Time) Stats {
	st := Stats{
		TotalLicenses:    len(snap.Licenses),
		TotalUsers:       len(snap.Users),
		TotalAssignments: len(snap.Assignments),
	}
	for _, l := range snap.Licenses {
		st.AvailableSeats += l.Available()
		switch license.StatusAt(l.ExpirationDate, now) {
		case license.StatusExpired:
			st.Expired++
		case license.StatusExpiringSoon:
			st.ExpiringSoon++
		}
	}
	return st
}
