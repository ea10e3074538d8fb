package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"

	"license-monitor/internal/export"
	"license-monitor/internal/license"
	"license-monitor/internal/report"
)

// Inventory is the record store and seat ledger behind the API.
type Inventory interface {
	Now() time.Time
	AddLicense(ctx context.Context, in license.LicenseInput) (license.License, error)
	AddUser(ctx context.Context, in license.UserInput) (license.User, error)
	DeleteLicense(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	Assign(ctx context.Context, in license.AssignInput) (license.Assignment, error)
	Unassign(ctx context.Context, id string) error
	Licenses() []license.License
	AvailableLicenses() []license.License
	Users() []license.User
	Assignments() []license.Assignment
	Snapshot() license.Snapshot
}

type API struct {
	inv       Inventory
	rateLimit int
}

// New builds the API. rateLimit is requests per minute per client IP; 0 disables limiting.
func New(inv Inventory, rateLimit int) *API {
	return &API{inv: inv, rateLimit: rateLimit}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "no-referrer",
	}).Handler)
	r.Use(requestLogger)
	if a.rateLimit > 0 {
		r.Use(httprate.Limit(a.rateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/licenses", a.listLicenses)
		r.Get("/licenses/available", a.listAvailable)
		r.Post("/licenses", a.addLicense)
		r.Delete("/licenses/{id}", a.deleteLicense)

		r.Get("/users", a.listUsers)
		r.Post("/users", a.addUser)
		r.Delete("/users/{id}", a.deleteUser)

		r.Get("/assignments", a.listAssignments)
		r.Post("/assignments", a.assign)
		r.Delete("/assignments/{id}", a.unassign)

		r.Get("/alerts", a.alerts)
		r.Get("/stats", a.stats)
		r.Get("/export", a.export)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

type errorResp struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// licenseView adds derived fields to a license for display.
type licenseView struct {
	license.License
	Available     int            `json:"availableSeats"`
	DaysRemaining int            `json:"daysRemaining"`
	Status        license.Status `json:"status"`
}

func (a *API) view(l license.License, now time.Time) licenseView {
	days := license.DaysRemaining(l.ExpirationDate, now)
	return licenseView{License: l, Available: l.Available(), DaysRemaining: days, Status: license.StatusFor(days)}
}

func (a *API) views(list []license.License) []licenseView {
	now := a.inv.Now()
	out := make([]licenseView, 0, len(list))
	for _, l := range list {
		out = append(out, a.view(l, now))
	}
	return out
}

func (a *API) listLicenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.views(a.inv.Licenses()))
}

func (a *API) listAvailable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.views(a.inv.AvailableLicenses()))
}

func (a *API) addLicense(w http.ResponseWriter, r *http.Request) {
	var in license.LicenseInput
	if !decode(w, r, &in) {
		return
	}
	lic, err := a.inv.AddLicense(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a.view(lic, a.inv.Now()))
}

func (a *API) deleteLicense(w http.ResponseWriter, r *http.Request) {
	if err := a.inv.DeleteLicense(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.inv.Users())
}

func (a *API) addUser(w http.ResponseWriter, r *http.Request) {
	var in license.UserInput
	if !decode(w, r, &in) {
		return
	}
	u, err := a.inv.AddUser(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.inv.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listAssignments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.inv.Assignments())
}

func (a *API) assign(w http.ResponseWriter, r *http.Request) {
	var in license.AssignInput
	if !decode(w, r, &in) {
		return
	}
	asg, err := a.inv.Assign(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asg)
}

func (a *API) unassign(w http.ResponseWriter, r *http.Request) {
	if err := a.inv.Unassign(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) alerts(w http.ResponseWriter, r *http.Request) {
	alerts := report.Alerts(a.inv.Snapshot(), a.inv.Now())
	if alerts == nil {
		alerts = []report.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.ComputeStats(a.inv.Snapshot(), a.inv.Now()))
}

func (a *API) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatXLSX
	}
	if format != export.FormatXLSX && format != export.FormatCSV {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "format must be xlsx or csv"})
		return
	}
	now := a.inv.Now()
	exp := report.BuildExport(a.inv.Snapshot(), now)
	w.Header().Set("content-type", export.ContentType(format))
	w.Header().Set("content-disposition", `attachment; filename="`+export.Filename(now, format)+`"`)
	if err := export.Write(w, format, exp); err != nil {
		log.Error().Err(err).Str("format", format).Msg("export failed")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "bad_json"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	var verr *license.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResp{Error: verr.Reason, Field: verr.Field})
	case errors.Is(err, license.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	case errors.Is(err, license.ErrDuplicateAssignment), errors.Is(err, license.ErrNoAvailableSeats):
		writeJSON(w, http.StatusConflict, errorResp{Error: err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "server_error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
