package postgres

import (
	"context"
	"errors"

	"clinic-records/internal/domain/animals"
	"clinic-records/internal/errs"

	"github.com/jackc/pgx/v5"
)

type AnimalsRepo struct {
	db *DB
}

func NewAnimalsRepo(db *DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `id, name, species, owner, contact, lookup_png, created_at, updated_at`

// ResolveOrCreate es un upsert de un solo round-trip sobre animals_name_owner_key.
// El DO UPDATE no cambia nada; existe para que RETURNING devuelva la fila existente.
// xmax = 0 solo vale para filas recién insertadas.
func (r *AnimalsRepo) ResolveOrCreate(ctx context.Context, a animals.Animal) (animals.Animal, bool, error) {
	const q = `
INSERT INTO animals (name, species, owner, contact, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (name, owner) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, species, owner, contact, lookup_png, created_at, updated_at, (xmax = 0) AS created`

	row := r.db.Pool.QueryRow(ctx, q, a.Name, a.Species, a.Owner, a.Contact, a.CreatedAt)

	var out animals.Animal
	var created bool
	if err := row.Scan(
		&out.ID,
		&out.Name,
		&out.Species,
		&out.Owner,
		&out.Contact,
		&out.LookupPNG,
		&out.CreatedAt,
		&out.UpdatedAt,
		&created,
	); err != nil {
		if isUniqueViolation(err) {
			return animals.Animal{}, false, errs.ErrConflict
		}
		return animals.Animal{}, false, storageErr(err)
	}
	return out, created, nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id int64) (animals.Animal, error) {
	const q = `SELECT ` + animalColumns + ` FROM animals WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *AnimalsRepo) GetByKey(ctx context.Context, key animals.NaturalKey) (animals.Animal, error) {
	const q = `SELECT ` + animalColumns + ` FROM animals WHERE name = $1 AND owner = $2`
	return r.getOne(ctx, q, key.Name, key.Owner)
}

func (r *AnimalsRepo) getOne(ctx context.Context, q string, args ...any) (animals.Animal, error) {
	var a animals.Animal
	err := r.db.Pool.QueryRow(ctx, q, args...).Scan(
		&a.ID,
		&a.Name,
		&a.Species,
		&a.Owner,
		&a.Contact,
		&a.LookupPNG,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return animals.Animal{}, errs.ErrNotFound
		}
		return animals.Animal{}, storageErr(err)
	}
	return a, nil
}

func (r *AnimalsRepo) List(ctx context.Context) ([]animals.Animal, error) {
	const q = `SELECT ` + animalColumns + ` FROM animals ORDER BY name ASC, id ASC`

	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		var a animals.Animal
		if err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.Species,
			&a.Owner,
			&a.Contact,
			&a.LookupPNG,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, a)
	}
	return out, storageErr(rows.Err())
}

func (r *AnimalsRepo) UpdateProfile(ctx context.Context, a animals.Animal) error {
	const q = `
UPDATE animals
SET species = $2, contact = $3, updated_at = $4
WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, q, a.ID, a.Species, a.Contact, a.UpdatedAt)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AttachLookup solo escribe si lookup_png sigue vacío: el QR no se regenera nunca.
func (r *AnimalsRepo) AttachLookup(ctx context.Context, id int64, png []byte) error {
	const upd = `
UPDATE animals
SET lookup_png = $2
WHERE id = $1 AND lookup_png IS NULL`

	tag, err := r.db.Pool.Exec(ctx, upd, id, png)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// 0 filas: o no existe, o ya tenía QR.
	const exists = `SELECT EXISTS (SELECT 1 FROM animals WHERE id = $1)`
	var found bool
	if err := r.db.Pool.QueryRow(ctx, exists, id).Scan(&found); err != nil {
		return storageErr(err)
	}
	if !found {
		return errs.ErrNotFound
	}
	return errs.ErrAlreadyBound
}

// Delete borra historial y animal en una misma transacción
// (además de ON DELETE CASCADE en el schema).
func (r *AnimalsRepo) Delete(ctx context.Context, id int64) error {
	const delHistory = `DELETE FROM history_entries WHERE animal_id = $1`
	const delAnimal = `DELETE FROM animals WHERE id = $1`

	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, delHistory, id); err != nil {
			return storageErr(err)
		}
		tag, err := tx.Exec(ctx, delAnimal, id)
		if err != nil {
			return storageErr(err)
		}
		if tag.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}
