package doselogs

import (
	"context"
	"errors"
	"strings"
	"time"

	"pilltrack/internal/domain/medications"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid dose status transition")
)

// Medications es lo que este servicio necesita del store de medicaciones.
type Medications interface {
	GetByID(ctx context.Context, id string) (medications.Medication, error)
	DecrementInventory(ctx context.Context, id string, units int) (bool, error)
}

type Service struct {
	repo Repository
	meds Medications
	tx   Transactor
	now  func() time.Time
}

func NewService(repo Repository, meds Medications) *Service {
	return &Service{
		repo: repo,
		meds: meds,
		tx:   direct{stores: TxStores{Doses: repo, Meds: meds}},
		now:  time.Now,
	}
}

// WithTransactor hace que MarkTaken escriba toma + inventario en una sola transacción.
func (s *Service) WithTransactor(tx Transactor) *Service {
	if tx != nil {
		s.tx = tx
	}
	return s
}

// WithClock reemplaza la fuente de tiempo (zona horaria configurada / tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Get devuelve la toma si pertenece a ownerUserID.
func (s *Service) Get(ctx context.Context, ownerUserID, id string) (DoseLog, error) {
	d, _, err := s.load(ctx, ownerUserID, id)
	return d, err
}

// MarkTaken: PENDING -> TAKEN. Descuenta inventario (QuantityPerDose) si alcanza.
func (s *Service) MarkTaken(ctx context.Context, ownerUserID, id string) (DoseLog, error) {
	d, med, err := s.load(ctx, ownerUserID, id)
	if err != nil {
		return DoseLog{}, err
	}
	if !CanTransition(d.Status, StatusTaken) {
		return DoseLog{}, ErrInvalidTransition
	}

	now := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st TxStores) error {
		ok, err := st.Doses.TransitionFromPending(ctx, Transition{
			ID:        d.ID,
			To:        StatusTaken,
			At:        now,
			TakenTime: &now,
		})
		if err != nil {
			return err
		}
		if !ok {
			// el sweeper la marcó MISSED entre la lectura y el update
			return ErrInvalidTransition
		}

		// sin stock suficiente la toma queda TAKEN igual; solo no se descuenta
		_, err = st.Meds.DecrementInventory(ctx, med.ID, med.UnitsPerDose())
		return err
	})
	if err != nil {
		return DoseLog{}, err
	}

	return s.repo.GetByID(ctx, d.ID)
}

// MarkSkipped: PENDING -> SKIPPED guardando el motivo en notes.
func (s *Service) MarkSkipped(ctx context.Context, ownerUserID, id, reason string) (DoseLog, error) {
	d, _, err := s.load(ctx, ownerUserID, id)
	if err != nil {
		return DoseLog{}, err
	}
	if !CanTransition(d.Status, StatusSkipped) {
		return DoseLog{}, ErrInvalidTransition
	}

	notes := strings.TrimSpace(reason)
	ok, err := s.repo.TransitionFromPending(ctx, Transition{
		ID:    d.ID,
		To:    StatusSkipped,
		At:    s.now(),
		Notes: &notes,
	})
	if err != nil {
		return DoseLog{}, err
	}
	if !ok {
		return DoseLog{}, ErrInvalidTransition
	}
	return s.repo.GetByID(ctx, d.ID)
}

// ListToday devuelve las tomas de hoy (según el reloj del servicio).
func (s *Service) ListToday(ctx context.Context, ownerUserID string) ([]DoseLog, error) {
	now := s.now()
	return s.ListBetween(ctx, ownerUserID, now, now)
}

// ListBetween incluye los días from y to completos.
func (s *Service) ListBetween(ctx context.Context, ownerUserID string, from, to time.Time) ([]DoseLog, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	start, end := dayRange(from, to)
	if end.Before(start) {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwnerBetween(ctx, ownerUserID, start, end)
}

// Adherence = TAKEN*100 / (TAKEN+MISSED+SKIPPED). Sin tomas cerradas => 100.
func (s *Service) Adherence(ctx context.Context, ownerUserID, medicationID string, from, to time.Time) (int, error) {
	med, err := s.meds.GetByID(ctx, strings.TrimSpace(medicationID))
	if err != nil {
		return 0, err
	}
	if med.OwnerUserID != ownerUserID {
		return 0, ErrForbidden
	}

	start, end := dayRange(from, to)
	if end.Before(start) {
		return 0, ErrInvalidInput
	}

	counts, err := s.repo.CountByMedicationBetween(ctx, med.ID, start, end)
	if err != nil {
		return 0, err
	}

	taken := counts[StatusTaken]
	total := taken + counts[StatusMissed] + counts[StatusSkipped]
	if total == 0 {
		return 100, nil
	}
	return taken * 100 / total, nil
}

func (s *Service) load(ctx context.Context, ownerUserID, id string) (DoseLog, medications.Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	id = strings.TrimSpace(id)
	if ownerUserID == "" || id == "" {
		return DoseLog{}, medications.Medication{}, ErrInvalidInput
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return DoseLog{}, medications.Medication{}, err
	}
	med, err := s.meds.GetByID(ctx, d.MedicationID)
	if err != nil {
		return DoseLog{}, medications.Medication{}, err
	}
	if med.OwnerUserID != ownerUserID {
		return DoseLog{}, medications.Medication{}, ErrForbidden
	}
	return d, med, nil
}

// dayRange expande [from, to] a [inicio de from, fin de to].
func dayRange(from, to time.Time) (time.Time, time.Time) {
	y, m, d := from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	y, m, d = to.Date()
	end := time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
	return start, end
}
