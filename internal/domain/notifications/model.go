package notifications

import "time"

type Type string

const (
	TypeMedicationReminder Type = "MEDICATION_REMINDER"
	TypeLowStock           Type = "LOW_STOCK"
)

const actionURLMedications = "/dashboard/medications"

// Notification es la notificación in-app que ve el usuario.
// La entrega por push/email/etc la hace un Publisher aparte.
type Notification struct {
	ID     string
	UserID string

	Type      Type
	Title     string
	Message   string
	ActionURL string

	Read   bool
	ReadAt *time.Time

	CreatedAt time.Time
}
