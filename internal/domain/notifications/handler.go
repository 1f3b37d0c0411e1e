package notifications

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
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", listNotificationsHandler(svc))
		nr.Get("/unread-count", unreadCountHandler(svc))
		nr.Post("/read-all", markAllReadHandler(svc))
		nr.Post("/{notificationID}/read", markReadHandler(svc))
	})
}

type notificationResponse struct {
	ID        string     `json:"id"`
	Type      Type       `json:"type" enums:"MEDICATION_REMINDER,LOW_STOCK"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	ActionURL string     `json:"action_url,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type countResponse struct {
	Count int `json:"count"`
}

// listNotificationsHandler godoc
// @Summary Listar notificaciones
// @Description Notificaciones in-app del usuario autenticado, más recientes primero.
// @Tags notifications
// @Produce json
// @Param unread query bool false "Solo no leídas"
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Router /notifications [get]
func listNotificationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		unread := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("unread")), "true")
		items, err := svc.List(r.Context(), userID, unread)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, toResponse(n))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// unreadCountHandler godoc
// @Summary Cantidad de no leídas
// @Tags notifications
// @Produce json
// @Success 200 {object} countResponse
// @Failure 401 {string} string "unauthorized"
// @Router /notifications/unread-count [get]
func unreadCountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		n, err := svc.UnreadCount(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, countResponse{Count: n})
	}
}

// markReadHandler godoc
// @Summary Marcar como leída
// @Tags notifications
// @Produce json
// @Param notificationID path string true "ID de la notificación"
// @Success 200 {object} notificationResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /notifications/{notificationID}/read [post]
func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		n, err := svc.MarkRead(r.Context(), userID, chi.URLParam(r, "notificationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(n))
	}
}

// markAllReadHandler godoc
// @Summary Marcar todas como leídas
// @Tags notifications
// @Produce json
// @Success 200 {object} countResponse
// @Router /notifications/read-all [post]
func markAllReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		n, err := svc.MarkAllRead(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, countResponse{Count: n})
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

func toResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		ActionURL: n.ActionURL,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
