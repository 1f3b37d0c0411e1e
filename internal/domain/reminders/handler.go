package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pilltrack/internal/middleware"
	"pilltrack/internal/ports/store"

	"github.com/go-chi/chi/v5"
)

// MedicationOwners resuelve el dueño de una medicación para los chequeos de permisos.
type MedicationOwners interface {
	OwnerOf(ctx context.Context, medicationID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, meds MedicationOwners) {
	r.Get("/reminders", listRemindersHandler(svc))
	r.Post("/medications/{medicationID}/reminders", createReminderHandler(svc, meds))
	r.Get("/medications/{medicationID}/reminders", listMedicationRemindersHandler(svc, meds))
}

type createReminderRequest struct {
	Type          Type   `json:"type,omitempty" enums:"FIXED_TIME,INTERVAL,AS_NEEDED"`
	ScheduleInfo  string `json:"schedule_info"` // "08:00"
	MinutesBefore *int   `json:"minutes_before,omitempty"`
}

type reminderResponse struct {
	ID             string    `json:"id"`
	MedicationID   string    `json:"medication_id"`
	Type           Type      `json:"type"`
	ScheduleInfo   string    `json:"schedule_info"`
	CronExpression string    `json:"cron_expression,omitempty"`
	MinutesBefore  int       `json:"minutes_before"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// createReminderHandler godoc
// @Summary Crear recordatorio
// @Description Recordatorio diario para una medicación propia. minutes_before entre 0 y 1440 (default 5).
// @Tags reminders
// @Accept json
// @Produce json
// @Param medicationID path string true "ID de la medicación"
// @Param payload body createReminderRequest true "Recordatorio"
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 201 {object} reminderResponse
// @Failure 400 {string} string "invalid input"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /medications/{medicationID}/reminders [post]
func createReminderHandler(svc *Service, meds MedicationOwners) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		medID := chi.URLParam(r, "medicationID")
		if err := checkOwner(r.Context(), meds, userID, medID); err != nil {
			writeError(w, err)
			return
		}

		var req createReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rem, err := svc.Create(r.Context(), CreateInput{
			MedicationID:  medID,
			Type:          req.Type,
			ScheduleInfo:  req.ScheduleInfo,
			MinutesBefore: req.MinutesBefore,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(rem))
	}
}

// listMedicationRemindersHandler godoc
// @Summary Recordatorios de una medicación
// @Tags reminders
// @Produce json
// @Param medicationID path string true "ID de la medicación"
// @Success 200 {array} reminderResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /medications/{medicationID}/reminders [get]
func listMedicationRemindersHandler(svc *Service, meds MedicationOwners) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		medID := chi.URLParam(r, "medicationID")
		if err := checkOwner(r.Context(), meds, userID, medID); err != nil {
			writeError(w, err)
			return
		}

		items, err := svc.ListByMedication(r.Context(), medID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

// listRemindersHandler godoc
// @Summary Recordatorios activos del usuario
// @Tags reminders
// @Produce json
// @Success 200 {array} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Router /reminders [get]
func listRemindersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		items, err := svc.ListActiveByOwner(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(items))
	}
}

func checkOwner(ctx context.Context, meds MedicationOwners, userID, medicationID string) error {
	if strings.TrimSpace(medicationID) == "" {
		return ErrInvalidInput
	}
	owner, err := meds.OwnerOf(ctx, medicationID)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}

func toResponses(items []Reminder) []reminderResponse {
	out := make([]reminderResponse, 0, len(items))
	for _, rem := range items {
		out = append(out, toResponse(rem))
	}
	return out
}

func toResponse(r Reminder) reminderResponse {
	return reminderResponse{
		ID:             r.ID,
		MedicationID:   r.MedicationID,
		Type:           r.Type,
		ScheduleInfo:   r.ScheduleInfo,
		CronExpression: r.CronExpression,
		MinutesBefore:  int(r.LeadTime() / time.Minute),
		Active:         r.Active,
		CreatedAt:      r.CreatedAt,
	}
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
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
