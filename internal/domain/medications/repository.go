package medications

import "context"

type Repository interface {
	Create(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Medication, error)

	// ListOwnerIDs devuelve los usuarios con al menos una medicación (universo de los sweeps).
	ListOwnerIDs(ctx context.Context) ([]string, error)

	// ListLowStockByOwner devuelve medicaciones ACTIVE con inventory <= maxUnits.
	ListLowStockByOwner(ctx context.Context, ownerUserID string, maxUnits int) ([]Medication, error)

	// DecrementInventory descuenta units solo si hay stock suficiente.
	// Devuelve false (sin error) si no alcanzaba.
	DecrementInventory(ctx context.Context, id string, units int) (bool, error)
}
