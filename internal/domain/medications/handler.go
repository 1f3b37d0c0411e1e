package medications

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

// RegisterRoutes monta las rutas sin r.Route: /medications/{medicationID}/... lo comparten otros módulos.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/medications", createMedicationHandler(svc))
	r.Get("/medications", listMedicationsHandler(svc))
	r.Get("/medications/{medicationID}", getMedicationHandler(svc))
}

type createMedicationRequest struct {
	Name            string `json:"name"`
	Dosage          string `json:"dosage"`
	Status          Status `json:"status,omitempty" enums:"ACTIVE,PAUSED,COMPLETED,DISCONTINUED"`
	StartDate       string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate         string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Inventory       int    `json:"inventory"`
	Frequency       int    `json:"frequency"`
	QuantityPerDose int    `json:"quantity_per_dose,omitempty"`
}

type medicationResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Dosage          string     `json:"dosage,omitempty"`
	Status          Status     `json:"status"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Inventory       int        `json:"inventory"`
	Frequency       int        `json:"frequency"`
	QuantityPerDose int        `json:"quantity_per_dose"`
	DaysRemaining   int        `json:"days_remaining"`
	CreatedAt       time.Time  `json:"created_at"`
}

// createMedicationHandler godoc
// @Summary Registrar medicación
// @Description Crea una medicación para el usuario autenticado. Status vacío => ACTIVE.
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body createMedicationRequest true "Medicación"
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		loc := svc.now().Location()
		start, err := parseDate(req.StartDate, loc)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := parseDate(req.EndDate, loc)
		if err != nil {
			http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), userID, CreateInput{
			Name:            req.Name,
			Dosage:          req.Dosage,
			Status:          req.Status,
			StartDate:       start,
			EndDate:         end,
			Inventory:       req.Inventory,
			Frequency:       req.Frequency,
			QuantityPerDose: req.QuantityPerDose,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicaciones
// @Tags medications
// @Produce json
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		items, err := svc.ListByOwner(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Detalle de medicación
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID de la medicación"
// @Success 200 {object} medicationResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /medications/{medicationID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		m, err := svc.Get(r.Context(), userID, chi.URLParam(r, "medicationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(m))
	}
}

func parseDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:              m.ID,
		Name:            m.Name,
		Dosage:          m.Dosage,
		Status:          m.Status,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		Inventory:       m.Inventory,
		Frequency:       m.Frequency,
		QuantityPerDose: m.UnitsPerDose(),
		DaysRemaining:   m.DaysRemaining(),
		CreatedAt:       m.CreatedAt,
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
