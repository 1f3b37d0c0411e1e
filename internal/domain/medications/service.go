package medications

import (
	"context"
	"errors"
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
	Name            string
	Dosage          string
	Status          Status
	StartDate       *time.Time
	EndDate         *time.Time
	Inventory       int
	Frequency       int
	QuantityPerDose int
}

// Create registra una medicación a nombre de ownerUserID. Status vacío => ACTIVE.
func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Medication, error) {
	if strings.TrimSpace(ownerUserID) == "" || strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}
	if in.Inventory < 0 || in.Frequency < 0 || in.QuantityPerDose < 0 {
		return Medication{}, ErrInvalidInput
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return Medication{}, ErrInvalidInput
	}

	st := in.Status
	if st == "" {
		st = StatusActive
	}

	now := s.now()
	m := Medication{
		ID:              uuid.NewString(),
		OwnerUserID:     ownerUserID,
		Name:            strings.TrimSpace(in.Name),
		Dosage:          strings.TrimSpace(in.Dosage),
		Status:          st,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Inventory:       in.Inventory,
		Frequency:       in.Frequency,
		QuantityPerDose: in.QuantityPerDose,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Get devuelve la medicación solo si pertenece a ownerUserID.
func (s *Service) Get(ctx context.Context, ownerUserID, id string) (Medication, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if m.OwnerUserID != ownerUserID {
		return Medication{}, ErrForbidden
	}
	return m, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Medication, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// OwnerOf expone el owner de una medicación (chequeos de permisos en doselogs).
func (s *Service) OwnerOf(ctx context.Context, id string) (string, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return m.OwnerUserID, nil
}
