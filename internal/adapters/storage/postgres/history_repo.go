package postgres

import (
	"context"
	"errors"
	"time"

	"clinic-records/internal/domain/history"
	"clinic-records/internal/errs"

	"github.com/jackc/pgx/v5"
)

type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

const entryColumns = `id, animal_id, kind, event_date, diagnosis, treatment, vaccine_name, due_date, created_at, updated_at`

// entryRow refleja una fila de history_entries; las columnas por variante son nullable.
type entryRow struct {
	ID        int64
	AnimalID  int64
	Kind      string
	EventDate time.Time
	Diagnosis *string
	Treatment *string
	Vaccine   *string
	DueDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r entryRow) toEntry() history.Entry {
	e := history.Entry{
		ID:        r.ID,
		AnimalID:  r.AnimalID,
		Kind:      history.Kind(r.Kind),
		Date:      history.TruncateDay(r.EventDate),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	switch e.Kind {
	case history.KindTreatment:
		e.Treatment = &history.Treatment{
			Diagnosis:   deref(r.Diagnosis),
			Description: deref(r.Treatment),
		}
	case history.KindVaccination:
		v := &history.Vaccination{Vaccine: deref(r.Vaccine)}
		if r.DueDate != nil {
			d := history.TruncateDay(*r.DueDate)
			v.DueDate = &d
		}
		e.Vaccination = v
	}
	return e
}

// entryArgs aplana el detalle de la variante a las columnas nullable.
func entryArgs(e history.Entry) (diagnosis, treatment, vaccine *string, due *time.Time) {
	if t := e.Treatment; t != nil {
		diagnosis = &t.Diagnosis
		treatment = &t.Description
	}
	if v := e.Vaccination; v != nil {
		vaccine = &v.Vaccine
		due = v.DueDate
	}
	return
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *HistoryRepo) Append(ctx context.Context, e history.Entry) (history.Entry, error) {
	const q = `
INSERT INTO history_entries
  (animal_id, kind, event_date, diagnosis, treatment, vaccine_name, due_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
RETURNING id`

	diagnosis, treatment, vaccine, due := entryArgs(e)

	var id int64
	err := r.db.Pool.QueryRow(ctx, q,
		e.AnimalID,
		string(e.Kind),
		e.Date,
		diagnosis,
		treatment,
		vaccine,
		due,
		e.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return history.Entry{}, errs.ErrNotFound
		}
		return history.Entry{}, storageErr(err)
	}

	e.ID = id
	e.UpdatedAt = e.CreatedAt
	return e, nil
}

func (r *HistoryRepo) GetByID(ctx context.Context, id int64) (history.Entry, error) {
	const q = `SELECT ` + entryColumns + ` FROM history_entries WHERE id = $1`

	var row entryRow
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&row.ID,
		&row.AnimalID,
		&row.Kind,
		&row.EventDate,
		&row.Diagnosis,
		&row.Treatment,
		&row.Vaccine,
		&row.DueDate,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return history.Entry{}, errs.ErrNotFound
		}
		return history.Entry{}, storageErr(err)
	}
	return row.toEntry(), nil
}

// ListByAnimal parte de animals con LEFT JOIN: cero filas = el animal no existe,
// una fila con h.id NULL = animal sin historial.
func (r *HistoryRepo) ListByAnimal(ctx context.Context, animalID int64) ([]history.Entry, error) {
	const q = `
SELECT a.id, h.id, h.kind, h.event_date, h.diagnosis, h.treatment, h.vaccine_name, h.due_date, h.created_at, h.updated_at
FROM animals a
LEFT JOIN history_entries h ON h.animal_id = a.id
WHERE a.id = $1
ORDER BY h.event_date DESC NULLS LAST, h.id DESC NULLS LAST`

	rows, err := r.db.Pool.Query(ctx, q, animalID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	found := false
	out := make([]history.Entry, 0)
	for rows.Next() {
		found = true

		var (
			aID       int64
			id        *int64
			kind      *string
			eventDate *time.Time
			diagnosis *string
			treatment *string
			vaccine   *string
			due       *time.Time
			createdAt *time.Time
			updatedAt *time.Time
		)
		if err := rows.Scan(&aID, &id, &kind, &eventDate, &diagnosis, &treatment, &vaccine, &due, &createdAt, &updatedAt); err != nil {
			return nil, storageErr(err)
		}
		if id == nil {
			continue
		}

		row := entryRow{
			ID:        *id,
			AnimalID:  aID,
			Kind:      deref(kind),
			Diagnosis: diagnosis,
			Treatment: treatment,
			Vaccine:   vaccine,
			DueDate:   due,
		}
		if eventDate != nil {
			row.EventDate = *eventDate
		}
		if createdAt != nil {
			row.CreatedAt = *createdAt
		}
		if updatedAt != nil {
			row.UpdatedAt = *updatedAt
		}
		out = append(out, row.toEntry())
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	if !found {
		return nil, errs.ErrNotFound
	}
	return out, nil
}

func (r *HistoryRepo) Update(ctx context.Context, e history.Entry) error {
	const q = `
UPDATE history_entries
SET event_date = $2, diagnosis = $3, treatment = $4, vaccine_name = $5, due_date = $6, updated_at = $7
WHERE id = $1`

	diagnosis, treatment, vaccine, due := entryArgs(e)

	tag, err := r.db.Pool.Exec(ctx, q, e.ID, e.Date, diagnosis, treatment, vaccine, due, e.UpdatedAt)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *HistoryRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM history_entries WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return storageErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
