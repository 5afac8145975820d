package memory

import (
	"context"
	"sort"

	"clinic-records/internal/domain/history"
	"clinic-records/internal/errs"
)

type historyRepo struct {
	st *Store
}

func NewHistoryRepo(st *Store) history.Repository {
	return &historyRepo{st: st}
}

func (r *historyRepo) Append(ctx context.Context, e history.Entry) (history.Entry, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	// FK: la entrada siempre pertenece a un animal existente.
	if _, ok := r.st.animals[e.AnimalID]; !ok {
		return history.Entry{}, errs.ErrNotFound
	}

	r.st.lastEntryID++
	e.ID = r.st.lastEntryID
	r.st.entries[e.ID] = cloneEntry(e)
	return cloneEntry(e), nil
}

func (r *historyRepo) GetByID(ctx context.Context, id int64) (history.Entry, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	e, ok := r.st.entries[id]
	if !ok {
		return history.Entry{}, errs.ErrNotFound
	}
	return cloneEntry(e), nil
}

func (r *historyRepo) ListByAnimal(ctx context.Context, animalID int64) ([]history.Entry, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	if _, ok := r.st.animals[animalID]; !ok {
		return nil, errs.ErrNotFound
	}

	out := make([]history.Entry, 0)
	for _, e := range r.st.entries {
		if e.AnimalID == animalID {
			out = append(out, cloneEntry(e))
		}
	}

	// Fecha desc; en empate, la inserción más nueva primero.
	sort.Slice(out, func(i, j int) bool {
		return history.Less(out[i], out[j])
	})
	return out, nil
}

func (r *historyRepo) Update(ctx context.Context, e history.Entry) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	current, ok := r.st.entries[e.ID]
	if !ok {
		return errs.ErrNotFound
	}

	// Solo campos mutables: id, animal y kind quedan como estaban.
	current.Date = e.Date
	current.Treatment = e.Treatment
	current.Vaccination = e.Vaccination
	current.UpdatedAt = e.UpdatedAt
	r.st.entries[e.ID] = cloneEntry(current)
	return nil
}

func (r *historyRepo) Delete(ctx context.Context, id int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.entries[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.st.entries, id)
	return nil
}

func cloneEntry(e history.Entry) history.Entry {
	if e.Treatment != nil {
		t := *e.Treatment
		e.Treatment = &t
	}
	if e.Vaccination != nil {
		v := *e.Vaccination
		if v.DueDate != nil {
			d := *v.DueDate
			v.DueDate = &d
		}
		e.Vaccination = &v
	}
	return e
}
