package doselogs

import "time"

type Status string

const (
	StatusPending Status = "PENDING"
	StatusTaken   Status = "TAKEN"
	StatusMissed  Status = "MISSED"
	StatusSkipped Status = "SKIPPED"
)

// IsTerminal: TAKEN, SKIPPED y MISSED no se revierten nunca.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusTaken, StatusSkipped, StatusMissed:
		return true
	default:
		return false
	}
}

// CanTransition implementa la máquina de estados: solo se sale de PENDING.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to.IsTerminal()
}

// DoseLog es una toma programada. Única por (MedicationID, ScheduledTime).
type DoseLog struct {
	ID           string
	MedicationID string

	ScheduledTime time.Time
	TakenTime     *time.Time

	Status Status
	Notes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition describe un cambio de estado condicionado a que la fila siga PENDING.
type Transition struct {
	ID        string
	To        Status
	At        time.Time
	TakenTime *time.Time
	Notes     *string // nil = no tocar
}
