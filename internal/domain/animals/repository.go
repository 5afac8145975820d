package animals

import "context"

type Repository interface {
	// ResolveOrCreate inserta el animal o devuelve el existente con la misma clave natural.
	// Debe ser atómico respecto de la restricción única (name, owner).
	ResolveOrCreate(ctx context.Context, a Animal) (Animal, bool, error)
	GetByID(ctx context.Context, id int64) (Animal, error)
	GetByKey(ctx context.Context, key NaturalKey) (Animal, error)
	List(ctx context.Context) ([]Animal, error)
	UpdateProfile(ctx context.Context, a Animal) error

	// AttachLookup guarda el QR solo si todavía no hay uno (errs.ErrAlreadyBound si ya existe).
	AttachLookup(ctx context.Context, id int64, png []byte) error

	// Delete borra el animal y todo su historial en la misma operación.
	Delete(ctx context.Context, id int64) error
}
