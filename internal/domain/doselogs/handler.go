package doselogs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pilltrack/internal/middleware"
	"pilltrack/internal/ports/store"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/doses", func(dr chi.Router) {
		dr.Get("/", listDosesHandler(svc))
		dr.Get("/today", listTodayHandler(svc))

		// Confirmación del usuario (única vía a TAKEN/SKIPPED)
		dr.Post("/{doseID}/take", takeDoseHandler(svc))
		dr.Post("/{doseID}/skip", skipDoseHandler(svc))
	})

	r.Get("/medications/{medicationID}/adherence", adherenceHandler(svc))
}

// doseResponse representa una toma programada devuelta por la API.
type doseResponse struct {
	ID            string     `json:"id"`
	MedicationID  string     `json:"medication_id"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	TakenTime     *time.Time `json:"taken_time,omitempty"`
	Status        Status     `json:"status" enums:"PENDING,TAKEN,MISSED,SKIPPED"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type skipDoseRequest struct {
	Reason string `json:"reason"`
}

type adherenceResponse struct {
	MedicationID string `json:"medication_id"`
	From         string `json:"from"`
	To           string `json:"to"`
	Percentage   int    `json:"percentage"`
}

// listTodayHandler godoc
// @Summary Tomas de hoy
// @Description Lista las tomas programadas para hoy del usuario autenticado.
// @Tags doses
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} doseResponse
// @Failure 401 {string} string "unauthorized"
// @Router /doses/today [get]
func listTodayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		items, err := svc.ListToday(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponses(items))
	}
}

// listDosesHandler godoc
// @Summary Tomas por rango de fechas
// @Tags doses
// @Produce json
// @Param from query string true "YYYY-MM-DD"
// @Param to query string true "YYYY-MM-DD"
// @Success 200 {array} doseResponse
// @Failure 400 {string} string "from/to inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /doses [get]
func listDosesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		from, to, err := parseRange(svc, r)
		if err != nil {
			http.Error(w, "from/to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		items, err := svc.ListBetween(r.Context(), userID, from, to)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponses(items))
	}
}

// takeDoseHandler godoc
// @Summary Confirmar toma
// @Description PENDING -> TAKEN. Descuenta inventario de la medicación.
// @Tags doses
// @Produce json
// @Param doseID path string true "ID de la toma"
// @Success 200 {object} doseResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "dose not found"
// @Failure 409 {string} string "la toma ya no está PENDING"
// @Router /doses/{doseID}/take [post]
func takeDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		d, err := svc.MarkTaken(r.Context(), userID, chi.URLParam(r, "doseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponse(d))
	}
}

// skipDoseHandler godoc
// @Summary Omitir toma
// @Description PENDING -> SKIPPED con motivo opcional.
// @Tags doses
// @Accept json
// @Produce json
// @Param doseID path string true "ID de la toma"
// @Param payload body skipDoseRequest false "Motivo"
// @Success 200 {object} doseResponse
// @Failure 409 {string} string "la toma ya no está PENDING"
// @Router /doses/{doseID}/skip [post]
func skipDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req skipDoseRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		d, err := svc.MarkSkipped(r.Context(), userID, chi.URLParam(r, "doseID"), req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponse(d))
	}
}

// adherenceHandler godoc
// @Summary Porcentaje de adherencia
// @Tags doses
// @Produce json
// @Param medicationID path string true "ID de la medicación"
// @Param from query string true "YYYY-MM-DD"
// @Param to query string true "YYYY-MM-DD"
// @Success 200 {object} adherenceResponse
// @Router /medications/{medicationID}/adherence [get]
func adherenceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		from, to, err := parseRange(svc, r)
		if err != nil {
			http.Error(w, "from/to must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		medID := chi.URLParam(r, "medicationID")
		pct, err := svc.Adherence(r.Context(), userID, medID, from, to)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, adherenceResponse{
			MedicationID: medID,
			From:         from.Format(dateLayout),
			To:           to.Format(dateLayout),
			Percentage:   pct,
		})
	}
}

const dateLayout = "2006-01-02"

func parseRange(svc *Service, r *http.Request) (time.Time, time.Time, error) {
	loc := svc.now().Location()
	from, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.URL.Query().Get("from")), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.URL.Query().Get("to")), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toDoseResponses(items []DoseLog) []doseResponse {
	out := make([]doseResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toDoseResponse(d))
	}
	return out
}

func toDoseResponse(d DoseLog) doseResponse {
	return doseResponse{
		ID:            d.ID,
		MedicationID:  d.MedicationID,
		ScheduledTime: d.ScheduledTime,
		TakenTime:     d.TakenTime,
		Status:        d.Status,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
	}
}

// writeJSON está duplicado a propósito por módulo (igual que en el resto de handlers).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
