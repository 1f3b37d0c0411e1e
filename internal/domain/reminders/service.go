package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type CreateInput struct {
	MedicationID  string
	Type          Type
	ScheduleInfo  string
	MinutesBefore *int
}

// CreateFixedTime crea un recordatorio FIXED_TIME. Valida la hora aquí para que el
// sweep solo vea datos inválidos si se cargaron por fuera de este servicio.
func (s *Service) CreateFixedTime(ctx context.Context, medicationID, scheduleInfo string, minutesBefore *int) (Reminder, error) {
	return s.Create(ctx, CreateInput{
		MedicationID:  medicationID,
		Type:          TypeFixedTime,
		ScheduleInfo:  scheduleInfo,
		MinutesBefore: minutesBefore,
	})
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Reminder, error) {
	medID := strings.TrimSpace(in.MedicationID)
	if medID == "" {
		return Reminder{}, ErrInvalidInput
	}
	if in.MinutesBefore != nil && (*in.MinutesBefore < 0 || *in.MinutesBefore > MaxMinutesBefore) {
		return Reminder{}, ErrInvalidInput
	}

	typ := in.Type
	if typ == "" {
		typ = TypeFixedTime
	}

	r := Reminder{
		ID:            uuid.NewString(),
		MedicationID:  medID,
		Type:          typ,
		ScheduleInfo:  strings.TrimSpace(in.ScheduleInfo),
		MinutesBefore: in.MinutesBefore,
		Active:        true,
		CreatedAt:     s.now(),
	}

	if typ == TypeFixedTime {
		tod, err := ParseTimeOfDay(r.ScheduleInfo)
		if err != nil {
			return Reminder{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		r.CronExpression = fmt.Sprintf("0 %d %d * * ?", tod.Minute, tod.Hour)
	}
	r.JobKey = "reminder_" + medID + "_" + r.ID[:8]

	if err := s.repo.Create(ctx, r); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

func (s *Service) ListActiveByOwner(ctx context.Context, ownerUserID string) ([]Reminder, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListActiveByOwner(ctx, ownerUserID)
}

func (s *Service) ListByMedication(ctx context.Context, medicationID string) ([]Reminder, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByMedication(ctx, medicationID)
}
