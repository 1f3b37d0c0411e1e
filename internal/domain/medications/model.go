package medications

import "time"

type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusPaused       Status = "PAUSED"
	StatusCompleted    Status = "COMPLETED"
	StatusDiscontinued Status = "DISCONTINUED"
)

// Medication es un medicamento prescrito a un usuario.
// El motor de adherencia solo la lee; el inventario se descuenta al confirmar una toma.
type Medication struct {
	ID          string
	OwnerUserID string

	Name   string
	Dosage string // texto libre: "500mg", "2 comprimidos"

	Status Status

	StartDate *time.Time // nil = sin límite
	EndDate   *time.Time // nil = sin límite

	Inventory       int // unidades disponibles
	Frequency       int // tomas por día
	QuantityPerDose int // unidades por toma (0 => 1)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DaysRemaining = inventario / tomas por día. Sin frecuencia no hay proyección (0).
func (m Medication) DaysRemaining() int {
	if m.Frequency <= 0 {
		return 0
	}
	return m.Inventory / m.Frequency
}

func (m Medication) UnitsPerDose() int {
	if m.QuantityPerDose <= 0 {
		return 1
	}
	return m.QuantityPerDose
}

// ActiveOn indica si la medicación está ACTIVE y day cae dentro de [StartDate, EndDate].
// Solo se compara la fecha civil de day, en su propia zona horaria.
func (m Medication) ActiveOn(day time.Time) bool {
	if m.Status != StatusActive {
		return false
	}
	d := civil(day)
	if m.StartDate != nil && d < civil(*m.StartDate) {
		return false
	}
	if m.EndDate != nil && d > civil(*m.EndDate) {
		return false
	}
	return true
}

// civil codifica la fecha como yyyymmdd para comparar sin horas.
func civil(t time.Time) int {
	y, mo, d := t.Date()
	return y*10000 + int(mo)*100 + d
}
