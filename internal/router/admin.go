package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pilltrack/internal/jobs"
	"pilltrack/internal/middleware"
	"pilltrack/internal/ports/auth"
	"pilltrack/internal/scheduler"

	"github.com/go-chi/chi/v5"
)

// SweepTrigger lo implementa *scheduler.Scheduler.
type SweepTrigger interface {
	Trigger(ctx context.Context, name string) (jobs.Summary, error)
}

func registerAdminRoutes(r chi.Router, sweeps SweepTrigger) {
	r.Post("/admin/sweeps/{name}/run", runSweepHandler(sweeps))
}

type itemResponse struct {
	Key     string       `json:"key"`
	Outcome jobs.Outcome `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
}

type sweepSummaryResponse struct {
	Sweep      string         `json:"sweep"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Succeeded  int            `json:"succeeded"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	Items      []itemResponse `json:"items"`
}

// runSweepHandler godoc
// @Summary Ejecutar sweep manualmente
// @Description Corre reminders, missed-doses o low-stock una vez, respetando el guard del scheduler.
// @Tags admin
// @Produce json
// @Param name path string true "reminders | missed-doses | low-stock"
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param X-Debug-Roles header string false "Solo en modo dev, p.ej. admin"
// @Success 200 {object} sweepSummaryResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "unknown sweep"
// @Failure 409 {string} string "sweep already running"
// @Router /admin/sweeps/{name}/run [post]
func runSweepHandler(sweeps SweepTrigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.HasRole(auth.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		sum, err := sweeps.Trigger(r.Context(), chi.URLParam(r, "name"))
		switch {
		case errors.Is(err, scheduler.ErrUnknownSweep):
			http.Error(w, "unknown sweep", http.StatusNotFound)
			return
		case errors.Is(err, scheduler.ErrBusy):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toSummaryResponse(sum))
	}
}

func toSummaryResponse(s jobs.Summary) sweepSummaryResponse {
	items := make([]itemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, itemResponse{Key: it.Key, Outcome: it.Outcome, Reason: it.Reason})
	}
	return sweepSummaryResponse{
		Sweep:      s.Sweep,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Succeeded:  s.Succeeded(),
		Skipped:    s.Skipped(),
		Failed:     s.Failed(),
		Items:      items,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
