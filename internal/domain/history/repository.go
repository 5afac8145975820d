package history

import "context"

type Repository interface {
	// Append falla con errs.ErrNotFound si el animal no existe.
	Append(ctx context.Context, e Entry) (Entry, error)
	GetByID(ctx context.Context, id int64) (Entry, error)
	// ListByAnimal devuelve errs.ErrNotFound si el animal no existe
	// (nunca una lista vacía "colgando" de un id inexistente).
	ListByAnimal(ctx context.Context, animalID int64) ([]Entry, error)
	// Update reescribe solo los campos mutables (fecha + detalle).
	Update(ctx context.Context, e Entry) error
	Delete(ctx context.Context, id int64) error
}
